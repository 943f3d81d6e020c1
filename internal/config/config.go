// Package config loads analyzer configuration from a YAML file, an optional
// .env file and POLYLAB_* environment variables, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"polymarket-lab/internal/domain"
)

// EnvPrefix is the prefix of every environment override, e.g. POLYLAB_SERIES_INTERVAL.
const EnvPrefix = "POLYLAB"

// Defaults
const (
	DefaultInterval       = time.Minute
	DefaultTrailingWindow = 10
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultOutputDir      = "reports"
)

// Config is the full analyzer configuration.
type Config struct {
	Series     SeriesConfig     `yaml:"series" envconfig:"SERIES"`
	Scoring    ScoringConfig    `yaml:"scoring" envconfig:"SCORING"`
	Postgres   PostgresConfig   `yaml:"postgres" envconfig:"POSTGRES"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse" envconfig:"CLICKHOUSE"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Metrics    MetricsConfig    `yaml:"metrics" envconfig:"METRICS"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
}

// SeriesConfig controls reconstruction.
type SeriesConfig struct {
	Interval   time.Duration `yaml:"interval" envconfig:"INTERVAL"`
	FillPolicy string        `yaml:"fill_policy" envconfig:"FILL_POLICY"`
}

// ScoringConfig controls the strategy scorer and its fan-out.
type ScoringConfig struct {
	TrailingWindow int `yaml:"trailing_window" envconfig:"TRAILING_WINDOW"`
	Concurrency    int `yaml:"concurrency" envconfig:"CONCURRENCY"`
}

// PostgresConfig locates the raw-trade and market store. Empty DSN disables it.
type PostgresConfig struct {
	DSN      string `yaml:"dsn" envconfig:"DSN"`
	MaxConns int32  `yaml:"max_conns" envconfig:"MAX_CONNS"`
}

// ClickHouseConfig locates the series store. The DSN names the database, which
// is created on startup if missing. Empty DSN disables it.
type ClickHouseConfig struct {
	DSN string `yaml:"dsn" envconfig:"DSN"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"` // text | json
}

// MetricsConfig controls the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" envconfig:"ADDR"`
}

// OutputConfig controls where reports are written.
type OutputConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR"`
}

// Load reads configuration.
// Steps:
//  1. .env in the working directory, if present (never overrides set variables)
//  2. YAML file at path with ${VAR} expansion, skipped when path is empty
//  3. POLYLAB_* environment overrides
//  4. defaults for unset fields, then validation
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process env overrides: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads variables from files that exist; missing files are ignored.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// loadFile reads a YAML config file and expands environment variables.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Series.Interval == 0 {
		c.Series.Interval = DefaultInterval
	}
	if c.Series.FillPolicy == "" {
		c.Series.FillPolicy = domain.DefaultFillPolicy.String()
	}
	if c.Scoring.TrailingWindow == 0 {
		c.Scoring.TrailingWindow = DefaultTrailingWindow
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if c.Series.Interval < time.Millisecond {
		return fmt.Errorf("series interval must be at least 1ms, got %s", c.Series.Interval)
	}
	if !domain.FillPolicy(c.Series.FillPolicy).IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFillPolicy, c.Series.FillPolicy)
	}
	if c.Scoring.TrailingWindow < 1 {
		return fmt.Errorf("trailing window must be positive, got %d", c.Scoring.TrailingWindow)
	}
	if c.Scoring.Concurrency < 0 {
		return fmt.Errorf("scoring concurrency must not be negative, got %d", c.Scoring.Concurrency)
	}
	if c.Postgres.MaxConns < 0 {
		return fmt.Errorf("postgres max_conns must not be negative, got %d", c.Postgres.MaxConns)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// IntervalMs returns the sampling interval in milliseconds.
func (c *Config) IntervalMs() int64 {
	return c.Series.Interval.Milliseconds()
}
