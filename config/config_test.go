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

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(mapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{
		"TCPSWEEP_ADDR":          ":9090",
		"REDIS_ADDR":             "redis:6379",
		"REDIS_PASSWORD":         "secret",
		"REDIS_DB":               "2",
		"TCPSWEEP_API_KEY":       "k3y",
		"TCPSWEEP_PROBE_TIMEOUT": "250ms",
		"TCPSWEEP_DEFAULT_BATCH": "512",
		"TCPSWEEP_MAX_BATCH":     "1024",
		"TCPSWEEP_WORKERS":       "8",
		"TCPSWEEP_RATE_LIMIT":    "0",
		"TCPSWEEP_RATE_WINDOW":   "30s",
		"TCPSWEEP_TASK_TTL":      "1h",
		"TCPSWEEP_LOG_LEVEL":     "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "secret", cfg.RedisPassword)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "k3y", cfg.APIKey)
	assert.Equal(t, 250*time.Millisecond, cfg.ProbeTimeout)
	assert.Equal(t, 512, cfg.DefaultBatch)
	assert.Equal(t, 1024, cfg.MaxBatch)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, int64(0), cfg.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
	assert.Equal(t, time.Hour, cfg.TaskTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestFromEnvReportsEveryBadVariable(t *testing.T) {
	_, err := FromEnv(mapLookup(map[string]string{
		"TCPSWEEP_WORKERS":       "many",
		"TCPSWEEP_PROBE_TIMEOUT": "soon",
		"TCPSWEEP_LOG_LEVEL":     "chatty",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TCPSWEEP_WORKERS")
	assert.Contains(t, err.Error(), "TCPSWEEP_PROBE_TIMEOUT")
	assert.Contains(t, err.Error(), "TCPSWEEP_LOG_LEVEL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"zero timeout", func(c *Config) { c.ProbeTimeout = 0 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"no max batch", func(c *Config) { c.MaxBatch = 0 }},
		{"default above max", func(c *Config) { c.DefaultBatch = c.MaxBatch + 1 }},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }},
		{"zero window", func(c *Config) { c.RateWindow = 0 }},
		{"zero ttl", func(c *Config) { c.TaskTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	const key = "TCPSWEEP_WORKERS"
	if prev, ok := os.LookupEnv(key); ok {
		t.Cleanup(func() { _ = os.Setenv(key, prev) })
	} else {
		t.Cleanup(func() { _ = os.Unsetenv(key) })
	}
	require.NoError(t, os.Unsetenv(key))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=11\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 11, cfg.Workers)
}

func TestLoadToleratesMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
