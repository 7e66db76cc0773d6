// Package config loads service configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ServiceConfig holds identity and listener settings.
type ServiceConfig struct {
	Principal   string
	HTTPPort    string
	MetricsPort string
}

// PipelineConfig holds extraction pipeline settings.
type PipelineConfig struct {
	Provider            string
	ModelDir            string
	ConfidenceThreshold float64
	LabelSchemePath     string
}

// DataConfig holds corpus and correction store paths.
type DataConfig struct {
	Dir             string
	TrainFile       string
	CorrectionsFile string
	MergedFile      string
}

// KafkaConfig holds event publisher settings.
type KafkaConfig struct {
	Enabled         bool
	Brokers         []string
	TopicExtraction string
	TopicCorrection string
	Principal       string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel string
}

// Configuration is the full service configuration.
type Configuration struct {
	Service       ServiceConfig
	Pipeline      PipelineConfig
	Data          DataConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Load reads configuration from environment variables, falling back to
// defaults on missing or invalid values.
func Load() *Configuration {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-or-extraction")
	dataDir := envOrDefault("DATA_DIR", "data")

	cfg := &Configuration{
		Service: ServiceConfig{
			Principal:   principal,
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
		Pipeline: PipelineConfig{
			Provider:            envOrDefault("NER_PROVIDER", "mock"),
			ModelDir:            envOrDefault("NER_MODEL_DIR", "models/slot_model"),
			ConfidenceThreshold: envOrDefaultFloat("NER_CONFIDENCE_THRESHOLD", 0.5),
			LabelSchemePath:     envOrDefault("LABEL_SCHEME_PATH", ""),
		},
		Data: DataConfig{
			Dir:             dataDir,
			TrainFile:       envOrDefault("TRAIN_FILE", filepath.Join(dataDir, "labels", "train.jsonl")),
			CorrectionsFile: envOrDefault("CORRECTIONS_FILE", filepath.Join(dataDir, "labels", "corrections.jsonl")),
			MergedFile:      envOrDefault("MERGED_FILE", filepath.Join(dataDir, "labels", "train_corrected.jsonl")),
		},
		Kafka: KafkaConfig{
			Enabled:         envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:         envOrDefaultList("KAFKA_BROKERS", nil),
			TopicExtraction: envOrDefault("KAFKA_TOPIC_EXTRACTION", "or.extraction.completed"),
			TopicCorrection: envOrDefault("KAFKA_TOPIC_CORRECTION", "or.correction.accepted"),
			Principal:       envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel: envOrDefault("LOG_LEVEL", "info"),
		},
	}
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
