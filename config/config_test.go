package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skosovsky/textops"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, textops.StrategyHeuristic, cfg.Backend.Mode)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, textops.DefaultRoutineLimit, cfg.Store.LiveRoutines)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, "textops.yaml", `
backend:
  mode: delegated
  base_url: http://localhost:11434/v1
  model: llama3
  timeout: 5s
cache:
  size: 10
log:
  level: debug
  json: true
`)
	t.Setenv("TEXTOPS_BACKEND_API_KEY", "sk-env")
	t.Setenv("TEXTOPS_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("TEXTOPS_CACHE_SIZE", "20")
	t.Setenv("TEXTOPS_STORE_LIVE_ROUTINES", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, textops.StrategyDelegated, cfg.Backend.Mode)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Backend.BaseURL)
	assert.Equal(t, "llama3", cfg.Backend.Model)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "sk-env", cfg.Backend.APIKey)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Cache.Size, "env wins over the file")
	assert.Equal(t, 50, cfg.Store.LiveRoutines)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config file")

	_, err = Load(writeFile(t, "bad.yaml", "backend:\n  mode: oracle\n"))
	require.ErrorContains(t, err, "backend.mode")

	_, err = Load(writeFile(t, "bad.yaml", "log:\n  level: loud\n"))
	require.ErrorContains(t, err, "log.level")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"delegated without url", func(c *Config) { c.Backend.Mode = textops.StrategyDelegated; c.Backend.BaseURL = "" }},
		{"negative timeout", func(c *Config) { c.Backend.Timeout = -time.Second }},
		{"negative retries", func(c *Config) { c.Backend.MaxRetries = -1 }},
		{"negative cache", func(c *Config) { c.Cache.Size = -1 }},
		{"no live routines", func(c *Config) { c.Store.LiveRoutines = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")), "missing file is fine")

	t.Setenv("TEXTOPS_LOG_LEVEL", "warn")
	path := writeFile(t, ".env", "TEXTOPS_LOG_LEVEL=debug\nTEXTOPS_TEST_ONLY_KEY=loaded\n")
	t.Cleanup(func() { _ = os.Unsetenv("TEXTOPS_TEST_ONLY_KEY") })
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "warn", os.Getenv("TEXTOPS_LOG_LEVEL"), "existing variables win")
	assert.Equal(t, "loaded", os.Getenv("TEXTOPS_TEST_ONLY_KEY"))
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "warn"
	cfg.Log.JSON = true
	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestBackendClient(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg.BackendClient(nil))
}
