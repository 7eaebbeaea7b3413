package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "googleai", cfg.Site)
	assert.Equal(t, 90, cfg.ResponseTimeoutSeconds)
	assert.True(t, cfg.Headless)
	assert.False(t, cfg.RemoteDebug.Enabled)
	assert.Equal(t, 9222, cfg.RemoteDebug.Port)
	assert.Equal(t, 500, cfg.Poll.IntervalMs)
	assert.Equal(t, 3, cfg.Poll.StableChecks)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
site: ernie
response_timeout: 120
headless: false
remote_debug:
  enabled: true
  port: 19327
poll:
  interval_ms: 250
  stable_checks: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ernie", cfg.Site)
	assert.Equal(t, 120, cfg.ResponseTimeoutSeconds)
	assert.False(t, cfg.Headless)
	assert.True(t, cfg.RemoteDebug.Enabled)
	assert.Equal(t, 19327, cfg.RemoteDebug.Port)
	assert.Equal(t, 250, cfg.Poll.IntervalMs)
	assert.Equal(t, 5, cfg.Poll.StableChecks)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateUnknownSite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Site = "nonexistent"
	assert.ErrorContains(t, cfg.Validate(), "unknown site")
}

func TestValidateTimeoutFloor(t *testing.T) {
	// Short timeouts are raised to the floor rather than rejected.
	cfg := DefaultConfig()
	cfg.ResponseTimeoutSeconds = 5
	require.NoError(t, cfg.Validate())
	assert.Equal(t, MinResponseTimeoutSeconds, cfg.ResponseTimeoutSeconds)
}

func TestValidateRemoteDebugPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RemoteDebug.Enabled = true
	cfg.RemoteDebug.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "remote debug port")

	// A bad port is fine while remote debug is disabled.
	cfg = DefaultConfig()
	cfg.RemoteDebug.Port = 0
	assert.NoError(t, cfg.Validate())
}

func TestEngineOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ResponseTimeoutSeconds = 45
	cfg.Poll.IntervalMs = 200
	cfg.Poll.StableChecks = 4
	cfg.RemoteDebug.Enabled = true
	cfg.RemoteDebug.Port = 9222

	opts := cfg.EngineOptions()
	assert.Equal(t, 45*time.Second, opts.ResponseTimeout)
	assert.Equal(t, 200*time.Millisecond, opts.PollInterval)
	assert.Equal(t, 4, opts.StableChecks)
	assert.True(t, opts.RemoteDebug)
	assert.Equal(t, 9222, opts.DebugPort)
	assert.True(t, opts.Headless)
}
