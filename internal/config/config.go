package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var validBackends = []string{BackendMemory, BackendFile, BackendSQLite, BackendPostgres}

type Config struct {
	// Storage
	Backend     string
	DataDir     string
	SQLitePath  string
	PostgresDSN string
	Household   string

	// Household seeded on first start, "Name:YYYY-MM-DD,..."
	SeedKids string

	// Logging
	LogLevel  string
	LogFormat string

	// Scheduler
	CheckInterval time.Duration
	AutoAllowance bool
}

// Load reads .env when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Backend:     getEnv("LEDGER_BACKEND", BackendFile),
		DataDir:     getEnv("LEDGER_FILE_PATH", "./data"),
		SQLitePath:  getEnv("LEDGER_SQLITE_PATH", "./data/ledger.db"),
		PostgresDSN: getEnv("LEDGER_POSTGRES_DSN", postgresDSNFromParts()),
		Household:   getEnv("LEDGER_HOUSEHOLD", "default"),

		SeedKids: getEnv("LEDGER_SEED_KIDS", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "human"),

		CheckInterval: getEnvDuration("CHECK_INTERVAL", time.Hour),
		AutoAllowance: getEnvBool("AUTO_ALLOWANCE", true),
	}
}

// postgresDSNFromParts builds a DSN from the individual DB_* variables
// (Docker friendly).
func postgresDSNFromParts() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "savespendshare"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.Backend) {
		errors = append(errors, fmt.Sprintf("invalid backend '%s': must be one of %v", c.Backend, validBackends))
	}

	switch c.Backend {
	case BackendFile:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			errors = append(errors, "postgres DSN cannot be empty when using postgres backend")
		}
		if c.Household == "" {
			errors = append(errors, "household cannot be empty when using postgres backend")
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if c.LogFormat != "human" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'human' or 'json'", c.LogFormat))
	}

	if c.CheckInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid check interval %v: must be at least 1 minute", c.CheckInterval))
	} else if c.CheckInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid check interval %v: must be at most 24 hours", c.CheckInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
