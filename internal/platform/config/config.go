// Package config loads service configuration from ONBOARD_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full service configuration.
type Config struct {
	Server     Server
	Log        Log
	Redis      RedisConfig
	Database   DatabaseConfig
	Kafka      KafkaConfig
	Telemetry  TelemetryConfig
	Extraction ExtractionConfig
	Batch      BatchConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"ONBOARD_ADDR" envDefault:":8080"`
	JWTSigningKey   string        `env:"ONBOARD_JWT_SIGNING_KEY"`
	JWTIssuer       string        `env:"ONBOARD_JWT_ISSUER" envDefault:"onboard"`
	JWTAudience     string        `env:"ONBOARD_JWT_AUDIENCE" envDefault:"onboard-api"`
	StagingDir      string        `env:"ONBOARD_STAGING_DIR"`
	MaxUploadBytes  int64         `env:"ONBOARD_MAX_UPLOAD_BYTES" envDefault:"62914560"`
	ReadTimeout     time.Duration `env:"ONBOARD_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"ONBOARD_WRITE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"ONBOARD_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `env:"ONBOARD_LOG_LEVEL" envDefault:"info"`
	Format string `env:"ONBOARD_LOG_FORMAT" envDefault:"json"`
}

// RedisConfig enables the latest-decision cache when URL is set.
type RedisConfig struct {
	URL          string        `env:"ONBOARD_REDIS_URL"`
	PoolSize     int           `env:"ONBOARD_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"ONBOARD_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"ONBOARD_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"ONBOARD_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"ONBOARD_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	DecisionTTL  time.Duration `env:"ONBOARD_REDIS_DECISION_TTL" envDefault:"720h"`
}

// DatabaseConfig enables the Postgres audit store when URL is set.
type DatabaseConfig struct {
	URL             string        `env:"ONBOARD_DATABASE_URL"`
	MaxOpenConns    int           `env:"ONBOARD_DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"ONBOARD_DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"ONBOARD_DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	Migrate         bool          `env:"ONBOARD_DATABASE_MIGRATE" envDefault:"true"`
}

// KafkaConfig enables the decision event publisher when Brokers is set.
type KafkaConfig struct {
	Brokers           []string `env:"ONBOARD_KAFKA_BROKERS" envSeparator:","`
	Topic             string   `env:"ONBOARD_KAFKA_TOPIC" envDefault:"onboard.decisions"`
	ClientID          string   `env:"ONBOARD_KAFKA_CLIENT_ID" envDefault:"onboard"`
	ConsumerGroup     string   `env:"ONBOARD_KAFKA_CONSUMER_GROUP" envDefault:"onboard-decision-projector"`
	Partitions        int32    `env:"ONBOARD_KAFKA_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16    `env:"ONBOARD_KAFKA_REPLICATION_FACTOR" envDefault:"1"`
}

// TelemetryConfig enables OTLP/HTTP trace export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string  `env:"ONBOARD_OTEL_ENDPOINT"`
	Insecure    bool    `env:"ONBOARD_OTEL_INSECURE" envDefault:"false"`
	ServiceName string  `env:"ONBOARD_OTEL_SERVICE_NAME" envDefault:"onboard"`
	SampleRatio float64 `env:"ONBOARD_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// ExtractionConfig configures the document adapters.
type ExtractionConfig struct {
	TesseractPath string        `env:"ONBOARD_TESSERACT_PATH"`
	TesseractLang string        `env:"ONBOARD_TESSERACT_LANG"`
	OCRTimeout    time.Duration `env:"ONBOARD_OCR_TIMEOUT" envDefault:"30s"`
	XLSXSheet     string        `env:"ONBOARD_XLSX_SHEET"`
}

// BatchConfig bounds batch runs.
type BatchConfig struct {
	Concurrency int     `env:"ONBOARD_BATCH_CONCURRENCY" envDefault:"4"`
	Rate        float64 `env:"ONBOARD_BATCH_RATE" envDefault:"0"`
	Burst       int     `env:"ONBOARD_BATCH_BURST" envDefault:"1"`
}

// FromEnv parses and validates the configuration.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values that parse but cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("ONBOARD_ADDR must not be empty"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("ONBOARD_MAX_UPLOAD_BYTES must be positive"))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("ONBOARD_LOG_FORMAT must be json or text, got %q", c.Log.Format))
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, errors.New("ONBOARD_BATCH_CONCURRENCY must be at least 1"))
	}
	if c.Batch.Rate < 0 {
		errs = append(errs, errors.New("ONBOARD_BATCH_RATE must not be negative"))
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, errors.New("ONBOARD_OTEL_SAMPLE_RATIO must be between 0 and 1"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("ONBOARD_KAFKA_TOPIC is required with ONBOARD_KAFKA_BROKERS"))
	}
	return errors.Join(errs...)
}

// AuthEnabled reports whether evaluation endpoints require a bearer token.
func (c Config) AuthEnabled() bool {
	return c.Server.JWTSigningKey != ""
}
