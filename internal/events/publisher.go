// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"or-extraction-service/internal/observability/metrics"
)

// Publisher publishes pipeline events to separate Kafka topics: one
// for completed extractions, one for accepted corrections.
type Publisher struct {
	writerExtraction *kafka.Writer
	writerCorrection *kafka.Writer
	principal        string
	topicExtraction  string
	topicCorrection  string
	enabled          bool
	metrics          *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers         []string
	TopicExtraction string
	TopicCorrection string
	Principal       string
	Enabled         bool
}

// New creates a new Kafka event publisher. With Kafka disabled (or a
// nil config) the publisher runs in log-only mode: publishes succeed
// but only produce a debug log line.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:       cfg.Principal,
			topicExtraction: cfg.TopicExtraction,
			topicCorrection: cfg.TopicCorrection,
			enabled:         false,
			metrics:         m,
		}
	}

	// Custom dialer with longer timeouts for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerExtraction := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicExtraction,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerCorrection := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicCorrection,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicExtraction", cfg.TopicExtraction).
		Str("topicCorrection", cfg.TopicCorrection).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerExtraction: writerExtraction,
		writerCorrection: writerCorrection,
		principal:        cfg.Principal,
		topicExtraction:  cfg.TopicExtraction,
		topicCorrection:  cfg.TopicCorrection,
		enabled:          true,
		metrics:          m,
	}
}

// PublishExtraction publishes an extraction.completed event.
func (p *Publisher) PublishExtraction(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerExtraction, p.topicExtraction, "extraction", key, event)
}

// PublishCorrection publishes a correction.accepted event.
func (p *Publisher) PublishCorrection(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerCorrection, p.topicCorrection, "correction", key, event)
}

// publish is the internal method that writes to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(topic)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerExtraction != nil {
		if e := p.writerExtraction.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing extraction writer")
			err = e
		}
	}
	if p.writerCorrection != nil {
		if e := p.writerCorrection.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing correction writer")
			err = e
		}
	}
	return err
}
