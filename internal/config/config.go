package config

import (
	"errors"
	"fmt"
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings"
	"time"

	"github.com/joho/godotenv" // For loading .env files
)

const (
	DefaultAppPort         = "8080"
	DefaultFlushInterval   = time.Second
	DefaultAccountCacheTTL = time.Minute
	DefaultKafkaTopic      = "transaction_completed"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Config holds the application configuration
type Config struct {
	AppPort         string        // HTTP listen port
	FlushInterval   time.Duration // Transaction cache flush period
	DatabaseURL     string        // Postgres DSN, empty selects the in-memory store
	RedisAddr       string        // Redis address for the account cache, empty disables it
	RedisPass       string        // Redis password
	RedisDB         int           // Redis database number
	AccountCacheTTL time.Duration // How long resolved accounts stay in Redis
	KafkaBrokers    []string      // Kafka brokers, empty disables event publishing
	KafkaTopic      string        // Topic for completed transactions
	LogLevel        string        // logrus level name
	LogFormat       string        // text or json

	problems []error
}

// Load reads .env (if present) and the environment. Malformed values fall
// back to their defaults and are reported by Validate.
func Load() *Config {
	_ = godotenv.Load() // Load .env file if present

	cfg := &Config{
		AppPort:      getenv("APP_PORT", DefaultAppPort),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisPass:    os.Getenv("REDIS_PASS"),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", DefaultKafkaTopic),
		LogLevel:     getenv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:    getenv("LOG_FORMAT", DefaultLogFormat),
	}

	cfg.FlushInterval = time.Duration(cfg.positiveInt("FLUSH_INTERVAL_MS", int(DefaultFlushInterval/time.Millisecond))) * time.Millisecond
	cfg.AccountCacheTTL = time.Duration(cfg.positiveInt("ACCOUNT_CACHE_TTL_SECONDS", int(DefaultAccountCacheTTL/time.Second))) * time.Second
	cfg.RedisDB = cfg.nonNegativeInt("REDIS_DB", 0)

	switch cfg.LogFormat {
	case "text", "json":
	default:
		cfg.problems = append(cfg.problems, fmt.Errorf("LOG_FORMAT: unsupported format %q", cfg.LogFormat))
		cfg.LogFormat = DefaultLogFormat
	}
	return cfg
}

// Validate returns every problem found while loading, joined.
func (c *Config) Validate() error {
	return errors.Join(c.problems...)
}

func (c *Config) positiveInt(key string, def int) int {
	v, ok := c.intVar(key, def)
	if ok && v <= 0 {
		c.problems = append(c.problems, fmt.Errorf("%s: must be positive, got %d", key, v))
		return def
	}
	return v
}

func (c *Config) nonNegativeInt(key string, def int) int {
	v, ok := c.intVar(key, def)
	if ok && v < 0 {
		c.problems = append(c.problems, fmt.Errorf("%s: must not be negative, got %d", key, v))
		return def
	}
	return v
}

// intVar reports ok only when key was set and parsed.
func (c *Config) intVar(key string, def int) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.problems = append(c.problems, fmt.Errorf("%s: %w", key, err))
		return def, false
	}
	return v, true
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
