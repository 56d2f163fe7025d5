package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadFromEnv reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LOG_LEVEL", "ENV", "AWS_REGION", "REDSHIFT_DATA_ENDPOINT", "SECRETS_MANAGER_ENDPOINT",
		"STATEMENT_POLL_INTERVAL", "MAX_CONCURRENT_STATEMENTS", "LISTEN_ADDR",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100*time.Millisecond, cfg.StatementPollInterval)
	assert.Equal(t, 4, cfg.MaxConcurrentStatements)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.InDelta(t, 10.0, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.HasEndpointOverride())
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("REDSHIFT_DATA_ENDPOINT", "http://localhost:4566")
	t.Setenv("STATEMENT_POLL_INTERVAL", "250ms")
	t.Setenv("MAX_CONCURRENT_STATEMENTS", "8")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "eu-west-1", cfg.AWSRegion)
	assert.Equal(t, 250*time.Millisecond, cfg.StatementPollInterval)
	assert.Equal(t, 8, cfg.MaxConcurrentStatements)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.True(t, cfg.HasEndpointOverride())
	require.Len(t, cfg.Warnings, 1)
}

func TestLoadFromEnv_Malformed(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr string
	}{
		{key: "STATEMENT_POLL_INTERVAL", value: "soon", wantErr: "invalid STATEMENT_POLL_INTERVAL"},
		{key: "STATEMENT_POLL_INTERVAL", value: "-1s", wantErr: "must be positive"},
		{key: "MAX_CONCURRENT_STATEMENTS", value: "many", wantErr: "invalid MAX_CONCURRENT_STATEMENTS"},
		{key: "MAX_CONCURRENT_STATEMENTS", value: "0", wantErr: "must be positive"},
		{key: "RATE_LIMIT_RPS", value: "fast", wantErr: "invalid RATE_LIMIT_RPS"},
		{key: "RATE_LIMIT_BURST", value: "1.5", wantErr: "invalid RATE_LIMIT_BURST"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromEnv_ProductionRejectsEndpointOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("SECRETS_MANAGER_ENDPOINT", "http://localhost:4566")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be set in production")
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "WARN", want: slog.LevelWarn},
		{level: "warning", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "info", want: slog.LevelInfo},
		{level: "bogus", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.SlogLevel(), tt.level)
	}
}

func TestLoadDotEnv_FileNotFound(t *testing.T) {
	err := LoadDotEnv("/nonexistent/.env")
	if err != nil {
		t.Errorf("expected no error for missing .env, got: %v", err)
	}
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("TEST_KEY=test_value\n"), 0644)
	if err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if val := os.Getenv("TEST_KEY"); val != "test_value" {
		t.Errorf("TEST_KEY = %q, want %q", val, "test_value")
	}
	_ = os.Unsetenv("TEST_KEY")
}

func TestLoadDotEnv_SkipsComments(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("# comment\nTEST_COMMENT_KEY=value\n"), 0644)
	if err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if val := os.Getenv("TEST_COMMENT_KEY"); val != "value" {
		t.Errorf("TEST_COMMENT_KEY = %q, want %q", val, "value")
	}
	_ = os.Unsetenv("TEST_COMMENT_KEY")
}

func TestLoadDotEnv_EnvVarPrecedence(t *testing.T) {
	t.Setenv("TEST_PRECEDENCE_KEY", "from_env")

	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("TEST_PRECEDENCE_KEY=from_file\n"), 0644)
	if err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if val := os.Getenv("TEST_PRECEDENCE_KEY"); val != "from_env" {
		t.Errorf("TEST_PRECEDENCE_KEY = %q, want %q (env precedence)", val, "from_env")
	}
}
