package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Upstream wiki
	WikiHost string

	// Response cache; empty disables Redis
	RedisAddr string

	// Revision mining
	RevisionLimit int

	// Merge tuning
	MergeTimeout     time.Duration
	SizeGateBytes    int
	MaxMergeTimeouts int

	// Logging; empty logs to stdout
	LogFile string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8039"),

		WikiHost:  envOr("WIKI_HOST", "en.wikipedia.org"),
		RedisAddr: os.Getenv("REDIS_ADDR"),

		RevisionLimit: envInt("REVISION_LIMIT", 500),

		MergeTimeout:     envDuration("MERGE_TIMEOUT", 500*time.Millisecond),
		SizeGateBytes:    envInt("SIZE_GATE_BYTES", 1000),
		MaxMergeTimeouts: envInt("MAX_MERGE_TIMEOUTS", 3),

		LogFile: os.Getenv("LOG_FILE"),
	}

	if cfg.RevisionLimit <= 0 || cfg.RevisionLimit > 500 {
		cfg.RevisionLimit = 500
	}
	if cfg.MergeTimeout <= 0 {
		cfg.MergeTimeout = 500 * time.Millisecond
	}
	if cfg.SizeGateBytes <= 0 {
		cfg.SizeGateBytes = 1000
	}
	if cfg.MaxMergeTimeouts <= 0 {
		cfg.MaxMergeTimeouts = 3
	}

	return cfg
}

func (c Config) Validate() error {
	if c.WikiHost == "" {
		return fmt.Errorf("WIKI_HOST is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
