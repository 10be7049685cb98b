// Package config loads and validates the engine's optional ambient-stack
// configuration from a YAML file with environment-variable overrides. The
// core CLI flags (-path, -url, -threads, -limit, -query, ...) stay on the
// standard flag package in cmd/lexo; this package covers only the
// supporting services (cache, event bus, audit log, RPC server, metrics,
// tracing) that have no natural flag-per-field shape. Grounded on the
// teacher's pkg/config, trimmed from its microservice topology (Server,
// Postgres-as-primary-store, Gateway, per-shard search tuning) down to the
// fields this engine's domain stack actually uses.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level ambient-stack configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Audit      AuditConfig      `yaml:"audit"`
	RPC        RPCConfig        `yaml:"rpc"`
	Resilience ResilienceConfig `yaml:"resilience"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics HTTP server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// TracingConfig holds span tracer settings. cmd/lexo does not read them:
// spans are always recorded and logged.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sampleRate"`
}

// RedisConfig holds Redis connection and query-result caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds Kafka broker and topic settings for the index/crawl
// event stream consumed by -tail-events.
type KafkaConfig struct {
	Enabled bool        `yaml:"enabled"`
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical event names to their Kafka topic strings.
type KafkaTopics struct {
	DocumentIndexed string `yaml:"documentIndexed"`
	PageCrawled     string `yaml:"pageCrawled"`
}

// AuditConfig holds PostgreSQL connection parameters for run-telemetry
// persistence (build/search/crawl run records, not index data).
type AuditConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (a AuditConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		a.Host, a.Port, a.User, a.Password, a.Database, a.SSLMode,
	)
}

// RPCConfig holds timeouts for the -serve query server. pkg/rpc and
// cmd/lexo do not read them; served connections have no read or write
// deadline.
type RPCConfig struct {
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// ResilienceConfig controls crawler HTTP fetch retry and circuit-breaker
// behavior.
type ResilienceConfig struct {
	MaxRetries       int           `yaml:"maxRetries"`
	BaseBackoff      time.Duration `yaml:"baseBackoff"`
	FailureThreshold int           `yaml:"failureThreshold"`
	OpenDuration     time.Duration `yaml:"openDuration"`
}

// Load reads a YAML config file (if path is non-empty) and applies
// environment-variable overrides, returning a Config populated with
// sensible defaults for any missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			SampleRate: 1.0,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Kafka: KafkaConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				DocumentIndexed: "lexo.document-indexed",
				PageCrawled:     "lexo.page-crawled",
			},
		},
		Audit: AuditConfig{
			Enabled:         false,
			Host:            "localhost",
			Port:            5432,
			Database:        "lexo",
			User:            "lexo",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		RPC: RPCConfig{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Resilience: ResilienceConfig{
			MaxRetries:       3,
			BaseBackoff:      200 * time.Millisecond,
			FailureThreshold: 5,
			OpenDuration:     30 * time.Second,
		},
	}
}

// applyEnvOverrides reads LEXO_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LEXO_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LEXO_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LEXO_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv("LEXO_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LEXO_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LEXO_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LEXO_AUDIT_HOST"); v != "" {
		cfg.Audit.Host = v
	}
	if v := os.Getenv("LEXO_AUDIT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Audit.Port = port
		}
	}
	if v := os.Getenv("LEXO_AUDIT_PASSWORD"); v != "" {
		cfg.Audit.Password = v
	}
}
