package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/vidgen/internal/config"
)

func testDisplay() config.Display {
	return config.Config{
		BackendURL:      "http://localhost:8081",
		PollInterval:    3 * time.Second,
		RequestTimeout:  30 * time.Second,
		DefaultDuration: 10,
		DefaultRefine:   true,
		ListenAddr:      ":8090",
		SubmitRPS:       1,
		SubmitBurst:     3,
		Output:          "table",
	}.Display()
}

func TestWriteConfigJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, testDisplay(), "json", ""))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "3s", got["poll_interval"])
	assert.Equal(t, "http://localhost:8081", got["backend_url"])
}

func TestWriteConfigYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, testDisplay(), "yaml", ""))

	var got config.Display
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testDisplay(), got)
}

func TestWriteConfigText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, testDisplay(), "text", "/etc/vidgen.yaml"))
	assert.Contains(t, buf.String(), "backend_url")
	assert.Contains(t, buf.String(), "/etc/vidgen.yaml")
}

func TestWriteConfigUnknownFormat(t *testing.T) {
	assert.Error(t, writeConfig(&bytes.Buffer{}, testDisplay(), "xml", ""))
}

func TestTrackKeepsArgumentOrder(t *testing.T) {
	appCfg = config.Config{PollInterval: time.Second, Output: "table", Log: config.LogConfig{Format: "text"}}
	a, err := newApp(t.Context(), appOptions{component: "test", console: &bytes.Buffer{}})
	require.NoError(t, err)

	a.track([]string{"first", "second", "third"})
	assert.Equal(t, []string{"first", "second", "third"}, a.registry.IDs())
}
