package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Fusion      FusionConfig  `toml:"fusion"`
	Learned     LearnedConfig `toml:"learned"`
	Cache       CacheConfig   `toml:"cache"`
	Batch       BatchConfig   `toml:"batch"`
	Alerts      AlertsConfig  `toml:"alerts"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
	SQLite SQLiteConfig `toml:"sqlite"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// SQLiteConfig locates the article store
type SQLiteConfig struct {
	Path string `toml:"path"` // Database file, ":memory:" for an ephemeral store
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	Dir        string   `toml:"dir"`         // Log directory, defaults to <exe dir>/logs
	TimeFormat string   `toml:"time_format"` // default "15:04:05"
}

// FusionConfig tunes the fusion engine
type FusionConfig struct {
	CacheTTL          string `toml:"cache_ttl"`           // e.g. "6h"
	LongTextThreshold int    `toml:"long_text_threshold"` // characters above which the learned model is trusted more
	LearnedCharCap    int    `toml:"learned_char_cap"`    // characters passed to the learned model
}

// LearnedConfig selects the classifier behind the learned scorer
type LearnedConfig struct {
	Provider    string `toml:"provider"` // "http", "gemini", "claude" or "none"
	Endpoint    string `toml:"endpoint"` // inference server URL for the http provider
	Model       string `toml:"model"`
	APIKey      string `toml:"api_key"`
	Timeout     string `toml:"timeout"`      // per-call deadline
	InitTimeout string `toml:"init_timeout"` // model load deadline
}

// CacheConfig selects the sentiment cache backend
type CacheConfig struct {
	Backend       string `toml:"backend"`        // "memory", "badger" or "redis"
	SweepInterval string `toml:"sweep_interval"` // memory backend expiry sweep
	RedisURL      string `toml:"redis_url"`
}

// BatchConfig bounds pending-article processing
type BatchConfig struct {
	Workers       int     `toml:"workers"`
	RatePerSecond float64 `toml:"rate_per_second"` // learned model calls per second, 0 for unlimited
	Burst         int     `toml:"burst"`
	Limit         int     `toml:"limit"` // max articles per run
	Schedule      string  `toml:"schedule"`
}

// AlertsConfig drives periodic alert evaluation
type AlertsConfig struct {
	Enabled          bool        `toml:"enabled"`
	DefaultThreshold int         `toml:"default_threshold"`
	Schedule         string      `toml:"schedule"`
	Kafka            KafkaConfig `toml:"kafka"`
}

// KafkaConfig configures alert event publication
type KafkaConfig struct {
	Enabled  bool     `toml:"enabled"`
	Brokers  []string `toml:"brokers"`
	Topic    string   `toml:"topic"`
	ClientID string   `toml:"client_id"`
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8086,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/sentio",
			},
			SQLite: SQLiteConfig{
				Path: "./data/articles.db",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Fusion: FusionConfig{
			CacheTTL:          "6h",
			LongTextThreshold: 100,
			LearnedCharCap:    500,
		},
		Learned: LearnedConfig{
			Provider:    "http",
			Endpoint:    "http://localhost:8090/classify",
			Model:       "distilbert-base-uncased-finetuned-sst-2-english",
			Timeout:     "10s",
			InitTimeout: "2m",
		},
		Cache: CacheConfig{
			Backend:       "memory",
			SweepInterval: "10m",
			RedisURL:      "redis://localhost:6379/0",
		},
		Batch: BatchConfig{
			Workers:       4,
			RatePerSecond: 10,
			Burst:         4,
			Limit:         100,
			Schedule:      "*/15 * * * *",
		},
		Alerts: AlertsConfig{
			Enabled:          true,
			DefaultThreshold: 30,
			Schedule:         "*/30 * * * *",
			Kafka: KafkaConfig{
				Enabled:  false,
				Brokers:  []string{"localhost:9092"},
				Topic:    "sentiment-alerts",
				ClientID: "sentio",
			},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env -> CLI
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SENTIO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SENTIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SENTIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("SENTIO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if sqlitePath := os.Getenv("SENTIO_SQLITE_PATH"); sqlitePath != "" {
		config.Storage.SQLite.Path = sqlitePath
	}

	// Logging configuration
	if level := os.Getenv("SENTIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SENTIO_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitList(output)
	}

	// Learned scorer
	if provider := os.Getenv("SENTIO_LEARNED_PROVIDER"); provider != "" {
		config.Learned.Provider = provider
	}
	if endpoint := os.Getenv("SENTIO_LEARNED_ENDPOINT"); endpoint != "" {
		config.Learned.Endpoint = endpoint
	}
	if model := os.Getenv("SENTIO_LEARNED_MODEL"); model != "" {
		config.Learned.Model = model
	}
	if apiKey := os.Getenv("SENTIO_LEARNED_API_KEY"); apiKey != "" {
		config.Learned.APIKey = apiKey
	}
	if timeout := os.Getenv("SENTIO_LEARNED_TIMEOUT"); timeout != "" {
		config.Learned.Timeout = timeout
	}

	// Cache
	if backend := os.Getenv("SENTIO_CACHE_BACKEND"); backend != "" {
		config.Cache.Backend = backend
	}
	if redisURL := os.Getenv("SENTIO_REDIS_URL"); redisURL != "" {
		config.Cache.RedisURL = redisURL
	}

	// Batch
	if workers := os.Getenv("SENTIO_BATCH_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.Batch.Workers = w
		}
	}
	if rps := os.Getenv("SENTIO_BATCH_RATE"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil {
			config.Batch.RatePerSecond = r
		}
	}

	// Alerts
	if threshold := os.Getenv("SENTIO_ALERT_THRESHOLD"); threshold != "" {
		if t, err := strconv.Atoi(threshold); err == nil {
			config.Alerts.DefaultThreshold = t
		}
	}
	if brokers := os.Getenv("SENTIO_KAFKA_BROKERS"); brokers != "" {
		config.Alerts.Kafka.Brokers = splitList(brokers)
		config.Alerts.Kafka.Enabled = true
	}
	if topic := os.Getenv("SENTIO_KAFKA_TOPIC"); topic != "" {
		config.Alerts.Kafka.Topic = topic
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate rejects unknown providers and backends, malformed durations and
// schedules, and out-of-range thresholds.
func (c *Config) Validate() error {
	switch c.Learned.Provider {
	case "http", "gemini", "claude", "none":
	default:
		return fmt.Errorf("unknown learned provider %q (expected http, gemini, claude or none)", c.Learned.Provider)
	}

	switch c.Cache.Backend {
	case "memory", "badger", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q (expected memory, badger or redis)", c.Cache.Backend)
	}

	durations := map[string]string{
		"fusion.cache_ttl":     c.Fusion.CacheTTL,
		"learned.timeout":      c.Learned.Timeout,
		"learned.init_timeout": c.Learned.InitTimeout,
		"cache.sweep_interval": c.Cache.SweepInterval,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s '%s': %w", name, value, err)
		}
	}

	if c.Alerts.DefaultThreshold < 10 || c.Alerts.DefaultThreshold > 50 {
		return fmt.Errorf("alerts.default_threshold must be between 10 and 50, got %d", c.Alerts.DefaultThreshold)
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be positive, got %d", c.Batch.Workers)
	}

	for name, schedule := range map[string]string{"batch.schedule": c.Batch.Schedule, "alerts.schedule": c.Alerts.Schedule} {
		if schedule == "" {
			continue
		}
		if err := ValidateSchedule(schedule); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if c.Alerts.Kafka.Enabled && (len(c.Alerts.Kafka.Brokers) == 0 || c.Alerts.Kafka.Topic == "") {
		return fmt.Errorf("alerts.kafka requires brokers and topic when enabled")
	}

	return nil
}

// ValidateSchedule validates a standard 5-field cron expression
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// Duration parses a configured duration, returning fallback when value is empty or invalid
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
