package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"task-tracker/pkg/logger"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
	ErrUnknownDriver      = errors.New("unknown STORE_DRIVER")
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`

	StoreDriver string `env:"STORE_DRIVER" env-default:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBPoolSize  int    `env:"DB_POOL_SIZE" env-default:"10"`

	RedisURL      string `env:"REDIS_URL"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" env-default:"20"`
	CacheTTL      int    `env:"CACHE_TTL_SEC" env-default:"60"` // seconds

	KafkaBrokers    []string `env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic      string   `env:"KAFKA_TASK_TOPIC" env-default:"task-events"`
	KafkaPartitions int      `env:"KAFKA_PARTITIONS" env-default:"4"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"*"`
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from .env and the environment).
// An invalid environment is logged and replaced by defaults; call Init at startup
// to fail fast instead.
func Get() *Config {
	cfgOnce.Do(func() {
		c, err := Load(".env")
		if err != nil {
			logger.Error(context.Background(), "Config load failed; using defaults", "error", err)
			c = Defaults()
		}
		cfg = c
	})
	return cfg
}

// Init loads the config from envFile and the environment and installs it as
// the process config returned by Get.
func Init(envFile string) (*Config, error) {
	c, err := Load(envFile)
	if err != nil {
		return nil, err
	}
	cfgOnce.Do(func() { cfg = c })
	return Get(), nil
}

// Load reads envFile (if it exists) and then the environment. Values from the
// environment win.
func Load(envFile string) (*Config, error) {
	var c Config
	var err error
	if envFile != "" && fileExists(envFile) {
		err = cleanenv.ReadConfig(envFile, &c)
	} else {
		err = cleanenv.ReadEnv(&c)
	}
	if err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	c.KafkaBrokers = compact(c.KafkaBrokers)
	c.CORSAllowOrigins = compact(c.CORSAllowOrigins)
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Defaults returns the built-in configuration: in-memory store, no cache, no events.
func Defaults() *Config {
	return &Config{
		HTTPPort:         "8080",
		ReadTimeout:      10 * time.Second,
		WriteTimeout:     30 * time.Second,
		IdleTimeout:      120 * time.Second,
		ShutdownTimeout:  15 * time.Second,
		LogLevel:         "info",
		StoreDriver:      DriverMemory,
		DBPoolSize:       10,
		RedisPoolSize:    20,
		CacheTTL:         60,
		KafkaTopic:       "task-events",
		KafkaPartitions:  4,
		CORSAllowOrigins: []string{"*"},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StoreDriver)
	}
	return nil
}

// CacheEnabled reports whether a Redis list cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// EventsEnabled reports whether task events are published to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
