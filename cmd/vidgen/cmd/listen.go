package cmd

import (
	"net/http"

	"github.com/psantana5/vidgen/internal/config"
	"github.com/psantana5/vidgen/pkg/logging"
	tlsutil "github.com/psantana5/vidgen/pkg/tls"
)

// prepareTLS configures srv for HTTPS when cfg asks for it and returns the
// URL scheme the listener will use.
func prepareTLS(srv *http.Server, cfg config.TLSConfig, commonName string, logger *logging.Logger) (string, error) {
	if !cfg.Enabled() {
		return "http", nil
	}

	if cfg.SelfSigned {
		created, err := tlsutil.EnsureSelfSigned(cfg.CertFile, cfg.KeyFile, commonName)
		if err != nil {
			return "", err
		}
		if created {
			logger.Info("Generated self-signed certificate", logging.Fields{
				"cert": cfg.CertFile,
				"key":  cfg.KeyFile,
			})
		}
	}

	tlsCfg, err := tlsutil.ServerConfig(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return "", err
	}
	srv.TLSConfig = tlsCfg
	return "https", nil
}

// listen blocks serving srv, over TLS when prepareTLS installed a config
func listen(srv *http.Server) error {
	if srv.TLSConfig != nil {
		return srv.ListenAndServeTLS("", "")
	}
	return srv.ListenAndServe()
}
