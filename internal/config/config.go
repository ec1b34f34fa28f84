package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig aggregates runtime configuration. Everything comes from the
// environment so deployments never patch code for settings.
type AppConfig struct {
	HTTPAddr string
	Env      string // "development" or "production"

	// Database: sqlite (file path) or postgres (DSN).
	DBDriver    string
	DBPath      string
	DatabaseDSN string

	JWTSecret string
	TokenTTL  time.Duration

	// Redis is optional; empty addr disables rate limiting and the order
	// event outbox.
	RedisAddr string
	RedisDB   int

	// Kafka brokers (comma separated). Empty disables the outbox relay.
	KafkaBrokers []string
	KafkaTopic   string

	// Redis Stream outbox (handlers append atomically, relay forwards to
	// Kafka asynchronously).
	OrderEventStream   string
	OrderEventGroup    string
	OrderEventConsumer string

	// Rate limiting for order creation and login.
	OrderRateLimit  int
	OrderRateWindow time.Duration
}

// Load reads and validates configuration, falling back to defaults where a
// variable is unset.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		Env:                getEnv("APP_ENV", "development"),
		DBDriver:           getEnv("DB_DRIVER", "sqlite"),
		DBPath:             getEnv("DB_PATH", "giftstore.db"),
		DatabaseDSN:        getEnv("DATABASE_DSN", ""),
		JWTSecret:          getEnv("JWT_SECRET", "dev-jwt-secret"),
		TokenTTL:           24 * time.Hour,
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisDB:            0,
		KafkaBrokers:       splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "giftstore-order-events"),
		OrderEventStream:   getEnv("ORDER_EVENT_STREAM", "giftstore:order_events"),
		OrderEventGroup:    getEnv("ORDER_EVENT_GROUP", "giftstore-relay-group"),
		OrderEventConsumer: getEnv("ORDER_EVENT_CONSUMER", "giftstore-relay-1"),
		OrderRateLimit:     30,
		OrderRateWindow:    time.Minute,
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DBPath == "" {
			return AppConfig{}, fmt.Errorf("DB_PATH must not be empty for sqlite")
		}
	case "postgres":
		if cfg.DatabaseDSN == "" {
			return AppConfig{}, fmt.Errorf("DATABASE_DSN must not be empty for postgres")
		}
	default:
		return AppConfig{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		return AppConfig{}, fmt.Errorf("JWT_SECRET must not be empty")
	}

	ttlHour, err := getEnvInt("TOKEN_TTL_HOUR", int(cfg.TokenTTL.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid TOKEN_TTL_HOUR: %w", err)
	}
	if ttlHour <= 0 {
		return AppConfig{}, fmt.Errorf("TOKEN_TTL_HOUR must be > 0")
	}
	cfg.TokenTTL = time.Duration(ttlHour) * time.Hour

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("ORDER_RATE_LIMIT", cfg.OrderRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid ORDER_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("ORDER_RATE_LIMIT must be > 0")
	}
	cfg.OrderRateLimit = rateLimit

	windowSec, err := getEnvInt("ORDER_RATE_WINDOW_SEC", int(cfg.OrderRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid ORDER_RATE_WINDOW_SEC: %w", err)
	}
	if windowSec <= 0 {
		return AppConfig{}, fmt.Errorf("ORDER_RATE_WINDOW_SEC must be > 0")
	}
	cfg.OrderRateWindow = time.Duration(windowSec) * time.Second

	// The outbox relay needs both Redis and Kafka; validate the derived
	// settings only when it can actually run.
	if cfg.EventsEnabled() {
		if cfg.KafkaTopic == "" {
			return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
		}
		if cfg.OrderEventStream == "" {
			return AppConfig{}, fmt.Errorf("ORDER_EVENT_STREAM must not be empty")
		}
		if cfg.OrderEventGroup == "" {
			return AppConfig{}, fmt.Errorf("ORDER_EVENT_GROUP must not be empty")
		}
		if cfg.OrderEventConsumer == "" {
			return AppConfig{}, fmt.Errorf("ORDER_EVENT_CONSUMER must not be empty")
		}
	}

	return cfg, nil
}

// EventsEnabled reports whether the order-event outbox and relay should run.
func (c AppConfig) EventsEnabled() bool {
	return c.RedisAddr != "" && len(c.KafkaBrokers) > 0
}

// getEnv reads a string variable, returning fallback when unset or blank.
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt reads an integer variable, returning fallback when unset.
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV parses a comma separated string into a slice, dropping blanks.
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
