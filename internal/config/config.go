// Package config loads placementhub runtime settings from PLACEMENTHUB_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Seed drivers accepted by PLACEMENTHUB_SEED_DRIVER.
const (
	SeedBuiltin  = "builtin"
	SeedFile     = "file"
	SeedSQLite   = "sqlite"
	SeedPostgres = "postgres"
)

// Blob drivers accepted by PLACEMENTHUB_BLOB_DRIVER.
const (
	BlobFS     = "fs"
	BlobMemory = "memory"
	BlobS3     = "s3"
)

// Config is the full runtime configuration.
type Config struct {
	LogLevel  string `env:"PLACEMENTHUB_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"PLACEMENTHUB_LOG_FORMAT" envDefault:"json"`

	StrictApplicationStatus bool `env:"PLACEMENTHUB_STRICT_APPLICATION_STATUS"`

	Seed    SeedConfig
	Blob    BlobConfig
	Metrics MetricsConfig
	Tracing TracingConfig
}

// SeedConfig selects the initial dataset.
type SeedConfig struct {
	Driver      string `env:"PLACEMENTHUB_SEED_DRIVER" envDefault:"builtin"`
	Path        string `env:"PLACEMENTHUB_SEED_PATH"`
	SQLitePath  string `env:"PLACEMENTHUB_SEED_SQLITE_PATH" envDefault:"./placementhub.db"`
	PostgresDSN string `env:"PLACEMENTHUB_SEED_POSTGRES_DSN"`
}

// BlobConfig selects where report artifacts are written.
type BlobConfig struct {
	Driver       string `env:"PLACEMENTHUB_BLOB_DRIVER" envDefault:"fs"`
	FSRoot       string `env:"PLACEMENTHUB_BLOB_FS_ROOT" envDefault:"./reports"`
	S3Bucket     string `env:"PLACEMENTHUB_BLOB_S3_BUCKET"`
	S3Region     string `env:"PLACEMENTHUB_BLOB_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint   string `env:"PLACEMENTHUB_BLOB_S3_ENDPOINT"`
	S3PathStyle  bool   `env:"PLACEMENTHUB_BLOB_S3_PATH_STYLE"`
	S3AccessKey  string `env:"PLACEMENTHUB_BLOB_S3_ACCESS_KEY_ID"`
	S3SecretKey  string `env:"PLACEMENTHUB_BLOB_S3_SECRET_ACCESS_KEY"`
	ReportPrefix string `env:"PLACEMENTHUB_REPORT_PREFIX" envDefault:"reports"`
}

// MetricsConfig controls the metrics recorders.
type MetricsConfig struct {
	Namespace  string `env:"PLACEMENTHUB_METRICS_NAMESPACE" envDefault:"placementhub"`
	ExpvarName string `env:"PLACEMENTHUB_METRICS_EXPVAR_NAME"`
}

// TracingConfig controls OpenTelemetry export. File receives JSON-lines spans
// when no OTLP endpoint is configured.
type TracingConfig struct {
	Enabled     bool   `env:"PLACEMENTHUB_OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"PLACEMENTHUB_OTEL_ENDPOINT"`
	ServiceName string `env:"PLACEMENTHUB_OTEL_SERVICE_NAME" envDefault:"placementhub"`
	File        string `env:"PLACEMENTHUB_TRACE_FILE"`
}

// Load parses the process environment and validates the result.
func Load() (Config, error) {
	return LoadWith(env.Options{})
}

// LoadWith parses using caller-supplied options; tests pass Environment to
// avoid touching the process environment.
func LoadWith(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.Seed.Driver = strings.ToLower(strings.TrimSpace(c.Seed.Driver))
	c.Blob.Driver = strings.ToLower(strings.TrimSpace(c.Blob.Driver))
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	switch c.Seed.Driver {
	case SeedBuiltin, SeedSQLite:
	case SeedFile:
		if c.Seed.Path == "" {
			errs = append(errs, errors.New("PLACEMENTHUB_SEED_PATH is required for the file seed driver"))
		}
	case SeedPostgres:
		if c.Seed.PostgresDSN == "" {
			errs = append(errs, errors.New("PLACEMENTHUB_SEED_POSTGRES_DSN is required for the postgres seed driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown seed driver %q", c.Seed.Driver))
	}
	switch c.Blob.Driver {
	case BlobFS, BlobMemory:
	case BlobS3:
		if c.Blob.S3Bucket == "" {
			errs = append(errs, errors.New("PLACEMENTHUB_BLOB_S3_BUCKET is required for the s3 blob driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob driver %q", c.Blob.Driver))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LogLevel onto a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
