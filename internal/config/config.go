// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// maxPriceCeiling mirrors the extraction pipeline's hard ceiling.
const maxPriceCeiling = 1_000_000

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Fetch         FetchConfig         `yaml:"fetch"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Extraction    ExtractionConfig    `yaml:"extraction"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
	Tracing       TracingConfig       `yaml:"tracing"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Driver   string         `yaml:"driver"` // file, postgres
	File     FileConfig     `yaml:"file"`
	Database DatabaseConfig `yaml:"database"`
}

// FileConfig defines the JSON document store settings.
type FileConfig struct {
	Path string `yaml:"path"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode, d.PoolSize,
	)
}

// FetchConfig defines how source pages are retrieved.
type FetchConfig struct {
	Timeout      time.Duration   `yaml:"timeout"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
	MaxBodyBytes int64           `yaml:"max_body_bytes"`
	MinBodyBytes int             `yaml:"min_body_bytes"`
	UserAgents   []string        `yaml:"user_agents"`
}

// RateLimitConfig defines outgoing fetch rate limiting.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"` // 0 = unlimited
}

// ScheduleConfig defines the background refresh.
type ScheduleConfig struct {
	Enabled *bool `yaml:"enabled"` // default: true
	// UpdateInterval overrides the interval stored in settings when set.
	UpdateInterval time.Duration `yaml:"update_interval"`
	Concurrency    int           `yaml:"concurrency"`
}

// IsEnabled reports whether the scheduler should run.
func (s *ScheduleConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// ExtractionConfig tunes the price pipeline and ledger.
type ExtractionConfig struct {
	MaxPrice        float64  `yaml:"max_price"`
	HistoryLimit    int      `yaml:"history_limit"`
	StatsWindowDays int      `yaml:"stats_window_days"`
	CommonSelectors []string `yaml:"common_selectors"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
	Username   string `yaml:"username"` // overrides the webhook's name when set
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// TracingConfig defines OpenTelemetry export settings.
type TracingConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Endpoint       string        `yaml:"endpoint"`
	Insecure       bool          `yaml:"insecure"`
	ServiceName    string        `yaml:"service_name"`
	SampleRatio    float64       `yaml:"sample_ratio"`
	MetricsEnabled bool          `yaml:"metrics_enabled"`
	MetricInterval time.Duration `yaml:"metric_interval"`
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. Variables from a .env file next to the config
// file are used for substitution when the process environment lacks them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	dotenv, err := readDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, err
	}

	expanded := os.Expand(string(data), func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied, used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func readDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return env, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyStorageDefaults(&cfg.Storage)
	applyFetchDefaults(&cfg.Fetch)
	applyScheduleDefaults(&cfg.Schedule)
	applyExtractionDefaults(&cfg.Extraction)
	applyLoggingDefaults(&cfg.Logging)
	applyTracingDefaults(&cfg.Tracing)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyStorageDefaults(s *StorageConfig) {
	if s.Driver == "" {
		s.Driver = DriverFile
	}
	if s.File.Path == "" {
		s.File.Path = "buying-list-data.json"
	}
	d := &s.Database
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyFetchDefaults(f *FetchConfig) {
	if f.Timeout == 0 {
		f.Timeout = 30 * time.Second
	}
	if f.MaxBodyBytes == 0 {
		f.MaxBodyBytes = 5 << 20
	}
	if f.MinBodyBytes == 0 {
		f.MinBodyBytes = 100
	}
	if f.RateLimit.PerSecond == 0 {
		f.RateLimit.PerSecond = 2.0
	}
	if f.RateLimit.Burst == 0 {
		f.RateLimit.Burst = 4
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Concurrency == 0 {
		s.Concurrency = 16
	}
}

func applyExtractionDefaults(e *ExtractionConfig) {
	if e.MaxPrice == 0 {
		e.MaxPrice = maxPriceCeiling
	}
	if e.HistoryLimit == 0 {
		e.HistoryLimit = 100
	}
	if e.StatsWindowDays == 0 {
		e.StatsWindowDays = 30
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.ServiceName == "" {
		t.ServiceName = "buying-list"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
	if t.MetricInterval == 0 {
		t.MetricInterval = time.Minute
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Storage.Driver {
	case DriverFile:
	case DriverPostgres:
		db := cfg.Storage.Database
		if db.Host == "" {
			errs = append(errs, errors.New("storage.database.host is required when driver is postgres"))
		}
		if db.Name == "" {
			errs = append(errs, errors.New("storage.database.name is required when driver is postgres"))
		}
		if db.User == "" {
			errs = append(errs, errors.New("storage.database.user is required when driver is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"storage.driver must be one of: file, postgres (got %q)", cfg.Storage.Driver,
		))
	}

	if cfg.Fetch.Timeout < 0 {
		errs = append(errs, errors.New("fetch.timeout must not be negative"))
	}
	if cfg.Fetch.MinBodyBytes < 0 {
		errs = append(errs, errors.New("fetch.min_body_bytes must not be negative"))
	}
	if cfg.Schedule.UpdateInterval < 0 {
		errs = append(errs, errors.New("schedule.update_interval must not be negative"))
	}
	if cfg.Schedule.Concurrency < 0 {
		errs = append(errs, errors.New("schedule.concurrency must not be negative"))
	}

	if cfg.Extraction.MaxPrice < 0 || cfg.Extraction.MaxPrice > maxPriceCeiling {
		errs = append(errs, fmt.Errorf(
			"extraction.max_price must be between 0 and %d", maxPriceCeiling,
		))
	}
	if cfg.Extraction.HistoryLimit < 0 {
		errs = append(errs, errors.New("extraction.history_limit must not be negative"))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, errors.New("notifications.discord.webhook_url is required when discord is enabled"))
	}
	if cfg.Notifications.Webhook.Enabled && cfg.Notifications.Webhook.URL == "" {
		errs = append(errs, errors.New("notifications.webhook.url is required when webhook is enabled"))
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, errors.New("tracing.sample_ratio must be between 0 and 1"))
	}

	return errors.Join(errs...)
}
