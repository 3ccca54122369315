package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, KVBackendMemory, cfg.KV.Backend)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 24*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Demo.Latency)
	assert.Equal(t, "smartreads:tasks", cfg.Jobs.Stream)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.SnapshotsEnabled())
	assert.Zero(t, cfg.Security.RateLimit, "sign-in throttling is opt-in")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SMARTREADS_HTTP_PORT", "9090")
	t.Setenv("SMARTREADS_KV_BACKEND", "sqlite")
	t.Setenv("SMARTREADS_KV_SQLITEPATH", "/tmp/sr.db")
	t.Setenv("SMARTREADS_DEMO_LATENCY", "0s")
	t.Setenv("SMARTREADS_SECURITY_SESSIONTTL", "2h")
	t.Setenv("SMARTREADS_REDIS_ADDR", "127.0.0.1:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, KVBackendSQLite, cfg.KV.Backend)
	assert.Equal(t, "/tmp/sr.db", cfg.KV.SQLitePath)
	assert.Zero(t, cfg.Demo.Latency)
	assert.Equal(t, 2*time.Hour, cfg.Security.SessionTTL)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoadRejectsInvalidBackend(t *testing.T) {
	t.Setenv("SMARTREADS_KV_BACKEND", "etcd")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kv backend")
}

func TestLoadBackendRequirements(t *testing.T) {
	t.Setenv("SMARTREADS_KV_BACKEND", "postgres")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("SMARTREADS_KV_BACKEND", "redis")
	_, err = Load()
	require.Error(t, err)
}

func TestProductionRequiresProfileSecret(t *testing.T) {
	t.Setenv("SMARTREADS_ENVIRONMENT", "production")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("SMARTREADS_SECURITY_PROFILESECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Security.ProfileSecret)
}

func TestRestoreOnStartRequiresProfileSecret(t *testing.T) {
	t.Setenv("SMARTREADS_STORAGE_RESTOREONSTART", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.restoreonstart")

	t.Setenv("SMARTREADS_SECURITY_PROFILESECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Storage.RestoreOnStart)
}
