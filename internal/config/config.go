// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the provider binaries.
type Config struct {
	LogLevel string // log level: debug, info, warn, error (default "info")
	Env      string // environment: "development" (default) or "production"

	// AWS. Region falls back to the SDK default chain when empty. Endpoint
	// overrides point the clients at local emulators.
	AWSRegion              string
	RedshiftDataEndpoint   string
	SecretsManagerEndpoint string

	// Statement execution.
	StatementPollInterval   time.Duration // fixed delay between status polls (default 100ms)
	MaxConcurrentStatements int           // bound for concurrent independent statements (default 4)

	// HTTP event endpoint.
	ListenAddr     string  // HTTP listen address (default ":8080")
	RateLimitRPS   float64 // sustained requests per second (default 10)
	RateLimitBurst int     // burst capacity (default 20)

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// HasEndpointOverride returns true when any AWS client is pointed at a custom endpoint.
func (c *Config) HasEndpointOverride() bool {
	return c.RedshiftDataEndpoint != "" || c.SecretsManagerEndpoint != ""
}

// LoadFromEnv loads configuration from environment variables.
// Malformed numbers and durations are errors; unset values take defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:               os.Getenv("LOG_LEVEL"),
		Env:                    os.Getenv("ENV"),
		AWSRegion:              os.Getenv("AWS_REGION"),
		RedshiftDataEndpoint:   os.Getenv("REDSHIFT_DATA_ENDPOINT"),
		SecretsManagerEndpoint: os.Getenv("SECRETS_MANAGER_ENDPOINT"),
		ListenAddr:             os.Getenv("LISTEN_ADDR"),
	}

	if v := os.Getenv("STATEMENT_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STATEMENT_POLL_INTERVAL %q: %w", v, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("STATEMENT_POLL_INTERVAL must be positive, got %s", d)
		}
		cfg.StatementPollInterval = d
	}
	if v := os.Getenv("MAX_CONCURRENT_STATEMENTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_CONCURRENT_STATEMENTS %q: %w", v, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("MAX_CONCURRENT_STATEMENTS must be positive, got %d", n)
		}
		cfg.MaxConcurrentStatements = n
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		cfg.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		cfg.RateLimitBurst = n
	}

	// Defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.StatementPollInterval == 0 {
		cfg.StatementPollInterval = 100 * time.Millisecond
	}
	if cfg.MaxConcurrentStatements == 0 {
		cfg.MaxConcurrentStatements = 4
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 10
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 20
	}
	if cfg.HasEndpointOverride() {
		cfg.Warnings = append(cfg.Warnings, "AWS endpoint override set; using static test credentials")
	}

	// Production mode: emulator settings are fatal errors.
	if cfg.IsProduction() && cfg.HasEndpointOverride() {
		return nil, fmt.Errorf("REDSHIFT_DATA_ENDPOINT/SECRETS_MANAGER_ENDPOINT must not be set in production (ENV=production)")
	}

	return cfg, nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
