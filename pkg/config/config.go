package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/retry"
	"github.com/ekaya-inc/ekaya-normalize/pkg/source"
)

// DefaultPath is the config file read when no -config flag is given.
const DefaultPath = "config.yaml"

// Config holds all configuration for ekaya-normalize.
// Configuration can come from a YAML file or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	Source   SourceConfig   `yaml:"source"`
	Database DatabaseConfig `yaml:"database"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Report   ReportConfig   `yaml:"report"`
}

// SourceConfig locates the TSV export.
type SourceConfig struct {
	// Path is a local file path or an s3://bucket/key location.
	Path string `yaml:"path" env:"NORMALIZE_SOURCE" env-default:""`

	S3Region    string `yaml:"s3_region" env:"AWS_REGION" env-default:""`
	S3Endpoint  string `yaml:"s3_endpoint" env:"S3_ENDPOINT" env-default:""`
	S3PathStyle bool   `yaml:"s3_path_style" env:"S3_PATH_STYLE" env-default:"false"`

	AccessKeyID     string `yaml:"-" env:"AWS_ACCESS_KEY_ID"`     // Secret - not in YAML
	SecretAccessKey string `yaml:"-" env:"AWS_SECRET_ACCESS_KEY"` // Secret - not in YAML
	SessionToken    string `yaml:"-" env:"AWS_SESSION_TOKEN"`     // Secret - not in YAML
}

// DatabaseConfig holds the target store configuration.
// URL wins when set; otherwise a PostgreSQL URL is built from the discrete fields.
type DatabaseConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-default:""`

	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:"ekaya"`
	Password string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"PGDATABASE" env-default:"orders"`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`

	MaxConnections  int32         `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"4"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"PGMAX_CONN_LIFETIME" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"PGMAX_CONN_IDLE_TIME" env-default:"30m"`

	// ConnectRetries bounds reconnect attempts while opening the store.
	ConnectRetries int           `yaml:"connect_retries" env:"DATABASE_CONNECT_RETRIES" env-default:"3"`
	RetryDelay     time.Duration `yaml:"retry_delay" env:"DATABASE_RETRY_DELAY" env-default:"500ms"`
}

// PipelineConfig tunes stage execution.
type PipelineConfig struct {
	// BatchSize is the number of OrderDetail rows per multi-row INSERT.
	BatchSize int `yaml:"batch_size" env:"NORMALIZE_BATCH_SIZE" env-default:"5000"`
}

// LoggingConfig selects the log level and encoder.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" env:"METRICS_TEXTFILE" env-default:""`
}

// ReportConfig controls the run summary file.
type ReportConfig struct {
	Path string `yaml:"path" env:"NORMALIZE_REPORT" env-default:""`
}

// Load reads configuration from the YAML file at path with environment variable overrides.
// A missing file is not an error: configuration then comes from the environment alone.
// The version parameter is injected at build time and set on the returned Config.
func Load(version, path string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks values that cleanenv cannot.
func (c *Config) Validate() error {
	if c.Pipeline.BatchSize < 1 {
		return fmt.Errorf("pipeline.batch_size must be positive, got %d", c.Pipeline.BatchSize)
	}
	if c.Database.ConnectRetries < 0 {
		return fmt.Errorf("database.connect_retries must not be negative, got %d", c.Database.ConnectRetries)
	}
	return nil
}

// ConnectionURL returns the store URL. Without an explicit URL a PostgreSQL URL is
// assembled from the PG* fields. Either way a loopback host is rewritten when
// running in Docker.
func (c *DatabaseConfig) ConnectionURL() string {
	if c.URL != "" {
		return rewriteStoreURL(c.URL)
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   storeHostPort(c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
	}
	return u.String()
}

// StoreConfig converts the section into the database layer's Config.
func (c *DatabaseConfig) StoreConfig() *database.Config {
	rc := retry.DefaultConfig()
	rc.MaxRetries = c.ConnectRetries
	if c.RetryDelay > 0 {
		rc.InitialDelay = c.RetryDelay
	}
	return &database.Config{
		URL:             c.ConnectionURL(),
		MaxConnections:  c.MaxConnections,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
		Retry:           rc,
	}
}

// S3Config converts the section into the source layer's S3 settings.
func (c *SourceConfig) S3Config() source.S3Config {
	return source.S3Config{
		Region:          c.S3Region,
		Endpoint:        c.S3Endpoint,
		PathStyle:       c.S3PathStyle,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
	}
}
