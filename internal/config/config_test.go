package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8081", cfg.BackendURL)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.False(t, cfg.PollTerminal)
	assert.Equal(t, 10, cfg.DefaultDuration)
	assert.True(t, cfg.DefaultRefine)
	assert.Equal(t, ":8090", cfg.ListenAddr)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VIDGEN_BACKEND_URL", "http://backend.internal:9000/")
	t.Setenv("VIDGEN_POLL_INTERVAL", "500ms")
	t.Setenv("VIDGEN_LOG_LEVEL", "debug")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "http://backend.internal:9000", cfg.BackendURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend_url: https://video.example.com
poll_interval: 5s
poll_terminal: true
log:
  format: json
tracing:
  enabled: true
`), 0644))

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://video.example.com", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.True(t, cfg.PollTerminal)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "localhost:4318", cfg.Tracing.Endpoint)
}

func TestMissingExplicitConfigFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		BackendURL:   "http://localhost:8081",
		PollInterval: time.Second,
		SubmitBurst:  1,
		Output:       "table",
		Log:          LogConfig{Format: "text"},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.BackendURL = "localhost:8081"
	assert.Error(t, bad.Validate())

	bad = base
	bad.PollInterval = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Output = "xml"
	assert.Error(t, bad.Validate())

	relative := base
	relative.BackendURL = ""
	assert.NoError(t, relative.Validate())

	bad = base
	bad.TLS = TLSConfig{CertFile: "vidgen.crt"}
	assert.ErrorContains(t, bad.Validate(), "must be set together")

	bad = base
	bad.TLS = TLSConfig{SelfSigned: true}
	assert.Error(t, bad.Validate())

	secure := base
	secure.TLS = TLSConfig{CertFile: "vidgen.crt", KeyFile: "vidgen.key", SelfSigned: true}
	assert.NoError(t, secure.Validate())
	assert.True(t, secure.TLS.Enabled())
}

func TestDisplay(t *testing.T) {
	cfg := Config{PollInterval: 3 * time.Second, RequestTimeout: 30 * time.Second}
	d := cfg.Display()
	assert.Equal(t, "3s", d.PollInterval)
	assert.Equal(t, "30s", d.RequestTimeout)
}
