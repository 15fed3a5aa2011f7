package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_ENV", "nonexistent")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.HeartbeatInterval)
	assert.Equal(t, 60, cfg.SignalRateLimit)
	assert.Equal(t, 10*time.Second, cfg.SignalRateWindow)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICE.STUNURLs)
}

func TestLoad_ReadsEnvSpecificFile(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CONFIG_ENV", "test")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(`
mode: debug
port: 9090
secret: test-secret
redis:
  addr: redis:6379
session_ttl: 20m
heartbeat_interval: 5m
ice:
  turn_server_ip: 198.51.100.4
  turn_secret: turn-secret
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 20*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "198.51.100.4", cfg.ICE.TURNServerIP)
	assert.Equal(t, 24*time.Hour, cfg.ICE.TURNCredTTL)
}

func TestLoad_RejectsHeartbeatSlowerThanHalfTTL(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CONFIG_ENV", "test")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(`
session_ttl: 10m
heartbeat_interval: 6m
`), 0o644))

	_, err := Load()
	assert.ErrorContains(t, err, "heartbeat_interval")
}
