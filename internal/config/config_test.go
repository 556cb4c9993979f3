package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.GetHost())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 30, cfg.Engine.LookbackDays)
	assert.Equal(t, "us-east-1", cfg.Export.S3Region)
	assert.Equal(t, "adpilot", cfg.Export.S3Prefix)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  host: 127.0.0.1
  port: 9090
database:
  url: postgres://localhost/adpilot
  max_open_conns: 50
redis:
  enabled: true
  addr: localhost:6379
engine:
  cache_ttl_seconds: 120
derive:
  enabled: true
  interval_minutes: 90
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.GetHost())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/adpilot", cfg.Database.URL)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Engine.CacheTTL())
	assert.True(t, cfg.Derive.Enabled)
	assert.Equal(t, 90*time.Minute, cfg.Derive.Interval())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://override/db")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("EXPORT_S3_BUCKET", "adpilot-reports")

	cfg, err := LoadFromEnv("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres://override/db", cfg.Database.URL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Export.Enabled)
	assert.Equal(t, "adpilot-reports", cfg.Export.S3Bucket)
}

func TestInvalidYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: a map"), 0o644))

	_, err := LoadFromEnv(path)
	assert.Error(t, err)
}

func TestDurationFallbacks(t *testing.T) {
	assert.Equal(t, 5*time.Minute, EngineConfig{}.CacheTTL())
	assert.Equal(t, 6*time.Hour, DeriveConfig{}.Interval())
}
