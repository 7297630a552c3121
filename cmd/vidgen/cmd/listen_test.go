package cmd

import (
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/vidgen/internal/config"
	"github.com/psantana5/vidgen/pkg/logging"
)

func quietLogger() *logging.Logger {
	l := logging.NewLogger(logging.ERROR, false)
	l.SetConsole(io.Discard)
	return l
}

func TestPrepareTLSPlainHTTP(t *testing.T) {
	srv := &http.Server{}
	scheme, err := prepareTLS(srv, config.TLSConfig{}, "vidgen", quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "http", scheme)
	assert.Nil(t, srv.TLSConfig)
}

func TestPrepareTLSSelfSigned(t *testing.T) {
	dir := t.TempDir()
	cfg := config.TLSConfig{
		CertFile:   filepath.Join(dir, "vidgen.crt"),
		KeyFile:    filepath.Join(dir, "vidgen.key"),
		SelfSigned: true,
	}

	srv := &http.Server{}
	scheme, err := prepareTLS(srv, cfg, "vidgen", quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "https", scheme)
	require.NotNil(t, srv.TLSConfig)
	assert.Len(t, srv.TLSConfig.Certificates, 1)
}

func TestPrepareTLSMissingCertificate(t *testing.T) {
	dir := t.TempDir()
	cfg := config.TLSConfig{
		CertFile: filepath.Join(dir, "vidgen.crt"),
		KeyFile:  filepath.Join(dir, "vidgen.key"),
	}
	_, err := prepareTLS(&http.Server{}, cfg, "vidgen", quietLogger())
	assert.Error(t, err)
}
