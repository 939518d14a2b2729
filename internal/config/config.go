// Package config loads and validates application configuration from
// environment variables. A .env file in the working directory is loaded
// first when present, which keeps local development setups out of shell
// profiles.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// DayLimit is the maximum number of days allowed inside one rolling
	// window. Defaults to 90 (the Schengen short-stay rule).
	DayLimit int

	// WindowDays is the length of the rolling window in days. Defaults
	// to 180.
	WindowDays int

	// BufferDays is the minimum gap the optimizer leaves between
	// consecutive trips. Defaults to 2.
	BufferDays int

	// SearchHorizonDays bounds how far into the future the optimizer
	// considers placements. Defaults to 365.
	SearchHorizonDays int

	// ComplianceCacheSize is the number of compliance computations kept
	// memoized. Defaults to 50.
	ComplianceCacheSize int
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// describing the first tunable with an invalid value.
func Load() (Config, error) {
	// Missing .env is not an error; deployed environments set real env vars.
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.DayLimit, err = getEnvInt("DAY_LIMIT", 90); err != nil {
		return Config{}, err
	}
	if cfg.WindowDays, err = getEnvInt("WINDOW_DAYS", 180); err != nil {
		return Config{}, err
	}
	if cfg.BufferDays, err = getEnvInt("BUFFER_DAYS", 2); err != nil {
		return Config{}, err
	}
	if cfg.SearchHorizonDays, err = getEnvInt("SEARCH_HORIZON_DAYS", 365); err != nil {
		return Config{}, err
	}
	if cfg.ComplianceCacheSize, err = getEnvInt("COMPLIANCE_CACHE_SIZE", 50); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DayLimit < 1 {
		return fmt.Errorf("DAY_LIMIT must be at least 1, got %d", c.DayLimit)
	}
	if c.WindowDays < c.DayLimit {
		return fmt.Errorf("WINDOW_DAYS (%d) must not be smaller than DAY_LIMIT (%d)", c.WindowDays, c.DayLimit)
	}
	if c.BufferDays < 0 {
		return fmt.Errorf("BUFFER_DAYS must not be negative, got %d", c.BufferDays)
	}
	if c.SearchHorizonDays < 1 {
		return fmt.Errorf("SEARCH_HORIZON_DAYS must be at least 1, got %d", c.SearchHorizonDays)
	}
	if c.ComplianceCacheSize < 1 {
		return fmt.Errorf("COMPLIANCE_CACHE_SIZE must be at least 1, got %d", c.ComplianceCacheSize)
	}
	return nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses the environment variable named by key as an integer,
// returning fallback if the variable is not set or is empty.
func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
