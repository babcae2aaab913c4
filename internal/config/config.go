// Package config holds explicit service configuration with a defined
// load lifecycle. Components receive Config by injection; nothing reads
// environment variables at call time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully resolved service configuration.
type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	// Upstream inventory backend
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	// Maximum record-detail fetches in flight when expanding a history list.
	FetchConcurrency int

	// Optional Postgres audit store. Empty DSN disables persistence and
	// history is served from the in-memory log only.
	DatabaseURL string

	// Session tokens
	JWTSecret string

	// Worker settings
	PollSchedule string
	WatchedSKUs  []string
}

// Load reads configuration from the environment, honoring an optional
// .env file (ignored when absent).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("APP_PORT", "8080"),
		UpstreamBaseURL:  os.Getenv("UPSTREAM_BASE_URL"),
		UpstreamTimeout:  getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 10),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		PollSchedule:     getEnv("POLL_SCHEDULE", "@every 5m"),
		WatchedSKUs:      splitList(os.Getenv("WATCHED_SKUS")),
	}

	if cfg.UpstreamBaseURL == "" {
		return nil, fmt.Errorf("required environment variable UPSTREAM_BASE_URL not set")
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}

	return cfg, nil
}

// Development reports whether the service runs in development mode.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
