// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "or_extraction"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Extraction pipeline metrics
	ExtractionsTotal   prometheus.Counter
	ExtractionErrors   prometheus.Counter
	ExtractionDuration prometheus.Histogram
	EntitiesDecoded    *prometheus.CounterVec
	DecodeErrors       *prometheus.CounterVec
	MappingWarnings    *prometheus.CounterVec

	// Correction metrics
	CorrectionsStored   prometheus.Counter
	CorrectionsRejected prometheus.Counter

	// Merge metrics
	MergeRuns       prometheus.Counter
	MergeAdded      prometheus.Counter
	MergeDuplicates prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ExtractionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Total number of extraction requests processed",
		}),
		ExtractionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_errors_total",
			Help:      "Total number of extraction requests that failed",
		}),
		ExtractionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of extraction requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		EntitiesDecoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_decoded_total",
			Help:      "Total number of entities decoded, by entity type",
		}, []string{"type"}),
		DecodeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total number of decode failures, by kind",
		}, []string{"kind"}),
		MappingWarnings: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mapping_warnings_total",
			Help:      "Total number of field normalization warnings, by field",
		}, []string{"field"}),

		CorrectionsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrections_stored_total",
			Help:      "Total number of corrections accepted and stored",
		}),
		CorrectionsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrections_rejected_total",
			Help:      "Total number of corrections rejected by validation",
		}),

		MergeRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_runs_total",
			Help:      "Total number of corpus merge runs",
		}),
		MergeAdded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_added_total",
			Help:      "Total number of corrections added across merge runs",
		}),
		MergeDuplicates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_duplicates_total",
			Help:      "Total number of duplicate corrections excluded across merge runs",
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordExtraction records one extraction request.
func (m *Metrics) RecordExtraction(err error, durationSeconds float64) {
	m.ExtractionsTotal.Inc()
	m.ExtractionDuration.Observe(durationSeconds)
	if err != nil {
		m.ExtractionErrors.Inc()
	}
}

// RecordEntity records a decoded entity.
func (m *Metrics) RecordEntity(entityType string) {
	m.EntitiesDecoded.WithLabelValues(entityType).Inc()
}

// RecordDecodeError records a decode failure.
func (m *Metrics) RecordDecodeError(kind string) {
	m.DecodeErrors.WithLabelValues(kind).Inc()
}

// RecordMappingWarning records a field normalization warning.
func (m *Metrics) RecordMappingWarning(field string) {
	m.MappingWarnings.WithLabelValues(field).Inc()
}

// RecordCorrection records a correction submission outcome.
func (m *Metrics) RecordCorrection(accepted bool) {
	if accepted {
		m.CorrectionsStored.Inc()
	} else {
		m.CorrectionsRejected.Inc()
	}
}

// RecordMerge records one merge run.
func (m *Metrics) RecordMerge(added, duplicates int) {
	m.MergeRuns.Inc()
	m.MergeAdded.Add(float64(added))
	m.MergeDuplicates.Add(float64(duplicates))
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
