// Package config loads the service configuration from a TOML file, an
// optional .env file next to it and SCHED_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Storage    StorageConfig    `toml:"storage"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Tracing    TracingConfig    `toml:"tracing"`
	Redis      RedisConfig      `toml:"redis"`
	Kafka      KafkaConfig      `toml:"kafka"`
	Scheduling SchedulingConfig `toml:"scheduling"`
}

// ServerConfig timeouts are in seconds.
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // seconds
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type StorageConfig struct {
	Driver   string `toml:"driver"`    // postgres | memory
	SeedFile string `toml:"seed_file"` // memory driver only
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

type TracingConfig struct {
	Enabled     bool    `toml:"enabled"`
	Endpoint    string  `toml:"endpoint"`
	SampleRatio float64 `toml:"sample_ratio"`
	Insecure    bool    `toml:"insecure"`
}

// RedisConfig enables the Redis-backed booking locks. Durations are in milliseconds.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	LockTTL    int    `toml:"lock_ttl_ms"`
	RetryDelay int    `toml:"retry_delay_ms"`
	KeyPrefix  string `toml:"key_prefix"`
}

type KafkaConfig struct {
	Enabled        bool   `toml:"enabled"`
	Brokers        string `toml:"brokers"` // comma separated
	Topic          string `toml:"topic"`
	PublishTimeout int    `toml:"publish_timeout_ms"`
}

// SchedulingConfig holds the store timeout and the policy defaults used
// when no stored policy applies.
type SchedulingConfig struct {
	StoreTimeout       int `toml:"store_timeout_ms"`
	GranularityMinutes int `toml:"granularity_minutes"`
	MinLeadMinutes     int `toml:"min_lead_minutes"`
	AdvanceBookingDays int `toml:"advance_booking_days"`
	MaxSuggestions     int `toml:"max_suggestions"`
}

func (c SchedulingConfig) StoreTimeoutDuration() time.Duration {
	return time.Duration(c.StoreTimeout) * time.Millisecond
}

func (c RedisConfig) LockTTLDuration() time.Duration {
	return time.Duration(c.LockTTL) * time.Millisecond
}

func (c RedisConfig) RetryDelayDuration() time.Duration {
	return time.Duration(c.RetryDelay) * time.Millisecond
}

func (c KafkaConfig) PublishTimeoutDuration() time.Duration {
	return time.Duration(c.PublishTimeout) * time.Millisecond
}

// Default returns the configuration used for every key the file omits.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "scheduling",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Storage: StorageConfig{Driver: DriverPostgres},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{ServiceName: "scheduling_service", Path: "/metrics"},
		Tracing: TracingConfig{Endpoint: "localhost:4317", SampleRatio: 1, Insecure: true},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			LockTTL:    10000,
			RetryDelay: 25,
			KeyPrefix:  "scheduling:lock:",
		},
		Kafka: KafkaConfig{Topic: "appointments", PublishTimeout: 3000},
		Scheduling: SchedulingConfig{
			StoreTimeout:       5000,
			GranularityMinutes: domain.DefaultGranularityMinutes,
			MinLeadMinutes:     domain.DefaultMinLeadMinutes,
			AdvanceBookingDays: domain.DefaultAdvanceBookingDays,
			MaxSuggestions:     domain.DefaultMaxSuggestions,
		},
	}
}

// Load reads path over the defaults, then applies a .env file from the same
// directory (if present) and SCHED_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SCHED_DB_HOST":          &c.Database.Host,
		"SCHED_DB_USER":          &c.Database.User,
		"SCHED_DB_PASSWORD":      &c.Database.Password,
		"SCHED_DB_NAME":          &c.Database.DBName,
		"SCHED_DB_SSLMODE":       &c.Database.SSLMode,
		"SCHED_STORAGE_DRIVER":   &c.Storage.Driver,
		"SCHED_SEED_FILE":        &c.Storage.SeedFile,
		"SCHED_LOG_LEVEL":        &c.Logs.Level,
		"SCHED_LOG_FILE":         &c.Logs.File,
		"SCHED_TRACING_ENDPOINT": &c.Tracing.Endpoint,
		"SCHED_REDIS_ADDR":       &c.Redis.Addr,
		"SCHED_REDIS_PASSWORD":   &c.Redis.Password,
		"SCHED_KAFKA_BROKERS":    &c.Kafka.Brokers,
		"SCHED_KAFKA_TOPIC":      &c.Kafka.Topic,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"SCHED_HTTP_PORT":        &c.Server.HTTPPort,
		"SCHED_DB_PORT":          &c.Database.Port,
		"SCHED_STORE_TIMEOUT_MS": &c.Scheduling.StoreTimeout,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %v", ErrInvalidConfig, key, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"SCHED_METRICS_ENABLED": &c.Metrics.Enabled,
		"SCHED_TRACING_ENABLED": &c.Tracing.Enabled,
		"SCHED_REDIS_ENABLED":   &c.Redis.Enabled,
		"SCHED_KAFKA_ENABLED":   &c.Kafka.Enabled,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s must be a boolean: %v", ErrInvalidConfig, key, err)
		}
		*dst = b
	}

	return nil
}

// Validate checks the whole tree once so that the rest of the service can
// trust every field.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be between 1 and 65535", ErrInvalidConfig)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must be positive", ErrInvalidConfig)
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: storage.driver must be %q or %q", ErrInvalidConfig, DriverPostgres, DriverMemory)
	}

	if _, err := logger.ParseLevel(c.Logs.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Tracing.Enabled && (c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1) {
		return fmt.Errorf("%w: tracing.sample_ratio must be between 0 and 1", ErrInvalidConfig)
	}
	if c.Redis.Enabled && (c.Redis.Addr == "" || c.Redis.LockTTL <= 0 || c.Redis.RetryDelay <= 0) {
		return fmt.Errorf("%w: redis.addr, redis.lock_ttl_ms and redis.retry_delay_ms are required", ErrInvalidConfig)
	}
	// блокировка должна пережить самую долгую операцию с хранилищем под ней
	if c.Redis.Enabled && (c.Scheduling.StoreTimeout <= 0 || c.Redis.LockTTL <= c.Scheduling.StoreTimeout) {
		return fmt.Errorf("%w: redis.lock_ttl_ms must exceed scheduling.store_timeout_ms", ErrInvalidConfig)
	}
	if c.Kafka.Enabled && (strings.TrimSpace(c.Kafka.Brokers) == "" || c.Kafka.Topic == "") {
		return fmt.Errorf("%w: kafka.brokers and kafka.topic are required", ErrInvalidConfig)
	}

	return c.Scheduling.validate()
}

func (c SchedulingConfig) validate() error {
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("%w: scheduling.store_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.GranularityMinutes < domain.MinGranularityMinutes || c.GranularityMinutes > domain.MaxGranularityMinutes {
		return fmt.Errorf("%w: scheduling.granularity_minutes must be between %d and %d",
			ErrInvalidConfig, domain.MinGranularityMinutes, domain.MaxGranularityMinutes)
	}
	if c.MinLeadMinutes < domain.MinLeadMinutes || c.MinLeadMinutes > domain.MaxLeadMinutes {
		return fmt.Errorf("%w: scheduling.min_lead_minutes must be between %d and %d",
			ErrInvalidConfig, domain.MinLeadMinutes, domain.MaxLeadMinutes)
	}
	if c.AdvanceBookingDays < domain.MinAdvanceBookingDays || c.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: scheduling.advance_booking_days must be between %d and %d",
			ErrInvalidConfig, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}
	if c.MaxSuggestions < domain.MinSuggestions || c.MaxSuggestions > domain.MaxSuggestions {
		return fmt.Errorf("%w: scheduling.max_suggestions must be between %d and %d",
			ErrInvalidConfig, domain.MinSuggestions, domain.MaxSuggestions)
	}
	return nil
}
