package config

import (
	"fmt"
	"os"
	"time"
)

// Service configuration constants
const (
	ServiceName    = "inventory-service"
	ServiceVersion = "0.2.0"
)

// Kafka configuration constants
const (
	OrderEventsTopic     = "order-events"
	ProductEventsTopic   = "product-events"
	InventoryEventsTopic = "inventory-events"
	GroupID              = "inventory-group"
	BatchTimeout         = 10 * time.Millisecond
	BatchSize            = 100
	ConnectRetryDelay    = 5 * time.Second
)

// OpenTelemetry configuration constants
const (
	LogsPath       = "/otlp/v1/logs"    // Grafana Cloud OTLP path
	TracesPath     = "/otlp/v1/traces"  // Grafana Cloud OTLP path
	MetricsPath    = "/otlp/v1/metrics" // Grafana Cloud OTLP path
	ExportTimeout  = 30 * time.Second
	MaxQueueSize   = 2048
	MetricInterval = 15 * time.Second
)

// HTTP configuration constants
const (
	HTTPShutdownTimeout = 15 * time.Second
	HTTPReadTimeout     = 5 * time.Second
	HTTPWriteTimeout    = 10 * time.Second
)

// Config holds environment-specific configuration
type Config struct {
	KafkaBroker     string
	HTTPAddr        string
	OtelEndpoint    string
	OtelAuthHeader  string
	RedisAddr       string
	ConsulAddr      string
	ServiceHost     string
	DeadLetterTopic string
}

// TelemetryEnabled reports whether OTLP exporters should be installed.
func (c *Config) TelemetryEnabled() bool {
	return c.OtelEndpoint != ""
}

// LoadConfig loads configuration from environment variables with defaults and validation
func LoadConfig() (*Config, error) {
	config := &Config{
		KafkaBroker:     getEnvOrDefault("KAFKA_BROKER", "localhost:9092"),
		HTTPAddr:        getEnvOrDefault("HTTP_ADDR", ":3003"),
		OtelEndpoint:    os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader:  os.Getenv("OTEL_AUTH_HEADER"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		ConsulAddr:      os.Getenv("CONSUL_ADDR"),
		ServiceHost:     getEnvOrDefault("SERVICE_HOST", "localhost"),
		DeadLetterTopic: os.Getenv("DEAD_LETTER_TOPIC"),
	}

	if config.HTTPAddr == "" {
		return nil, fmt.Errorf("HTTP_ADDR cannot be empty")
	}
	if config.OtelAuthHeader != "" && config.OtelEndpoint == "" {
		return nil, fmt.Errorf("OTEL_AUTH_HEADER is set but OTEL_ENDPOINT is empty")
	}
	switch config.DeadLetterTopic {
	case OrderEventsTopic, ProductEventsTopic, InventoryEventsTopic:
		return nil, fmt.Errorf("DEAD_LETTER_TOPIC cannot reuse topic %q", config.DeadLetterTopic)
	}

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
