package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	p := writeConfig(t, "jwt:\n  secret: s3cret\n")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 8080, c.App.HTTP.Port)
	assert.Equal(t, 8081, c.App.Admin.Port)
	assert.Equal(t, 3, c.Directory.Retry.MaxRetries)
	assert.Equal(t, time.Second, c.Directory.Retry.InitialDelay())
	assert.InDelta(t, 2.0, c.Directory.Retry.BackoffMultiplier, 1e-9)
	assert.Equal(t, 24*time.Hour, c.JWT.TTL())

	lo, hi := c.Directory.LatencyRange()
	assert.Equal(t, 500*time.Millisecond, lo)
	assert.Equal(t, time.Second, hi)
	assert.Empty(t, c.Redis.Addr)
	assert.Equal(t, 100, c.Log.Sampling.Initial)
}

func TestLoadOverrides(t *testing.T) {
	p := writeConfig(t, `
jwt:
  secret: s3cret
directory:
  latency:
    minMs: 0
    maxMs: 0
  retry:
    maxRetries: 5
    initialDelayMs: 200
  faultRate: 0.25
log:
  file:
    enable: true
    filename: /tmp/dir.log
`)
	t.Setenv("APP_APP_HTTP_PORT", "9090")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Directory.Retry.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, c.Directory.Retry.InitialDelay())
	assert.InDelta(t, 0.25, c.Directory.FaultRate, 1e-9)
	assert.True(t, c.Log.File.Enable)
	assert.Equal(t, "/tmp/dir.log", c.Log.File.Filename)
	assert.Equal(t, 9090, c.App.HTTP.Port)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"missing secret": "app:\n  name: x\n",
		"bad latency":    "jwt:\n  secret: s\ndirectory:\n  latency:\n    minMs: 900\n    maxMs: 100\n",
		"bad fault rate": "jwt:\n  secret: s\ndirectory:\n  faultRate: 1.5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSecretFromEnv(t *testing.T) {
	p := writeConfig(t, "app:\n  name: x\n")
	t.Setenv("APP_JWT_SECRET", "from-env")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
}
