package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/psantana5/vidgen/internal/web"
	"github.com/psantana5/vidgen/pkg/logging"
	"github.com/psantana5/vidgen/pkg/ratelimit"
	"github.com/psantana5/vidgen/pkg/shutdown"
)

const (
	shutdownTimeout     = 15 * time.Second
	limiterCleanupEvery = time.Minute
	limiterMaxIdle      = 10 * time.Minute
)

var serveListen string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browser front-end",
	Long: `Serve the submission form and the auto-refreshing job list over HTTP.
The process holds a single session: every browser sees the same jobs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config, normally :8090)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListen != "" {
		appCfg.ListenAddr = serveListen
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, appOptions{component: "web"})
	if err != nil {
		return err
	}

	limiter := ratelimit.NewLimiter(appCfg.SubmitRPS, appCfg.SubmitBurst)
	srv, err := web.New(web.Config{
		Submitter:     a.submitter,
		Registry:      a.registry,
		Poller:        a.poller,
		Locator:       a.client,
		Metrics:       a.metrics,
		Tracing:       a.tracer,
		Limiter:       limiter,
		Logger:        a.logger,
		PollInterval:  appCfg.PollInterval,
		PollTerminal:  appCfg.PollTerminal,
		DefaultRefine: appCfg.DefaultRefine,
	})
	if err != nil {
		a.close(ctx)
		return err
	}

	httpServer := &http.Server{
		Addr:              appCfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheme, err := prepareTLS(httpServer, appCfg.TLS, "vidgen", a.logger)
	if err != nil {
		a.close(ctx)
		return err
	}

	mgr := shutdown.New(shutdownTimeout, a.logger)
	mgr.Register("logger", shutdown.CloseResource(a.logger))
	mgr.Register("tracer", a.tracer.Shutdown)
	mgr.Register("http-server", shutdown.StopHTTPServer(httpServer))
	mgr.Register("poller", a.poller.Stop)

	a.poller.Start(ctx)
	go cleanupLimiter(ctx, limiter, a.logger)

	go func() {
		a.logger.Info("Web front-end listening", logging.Fields{
			"addr":    appCfg.ListenAddr,
			"scheme":  scheme,
			"backend": appCfg.BackendURL,
		})
		if err := listen(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", logging.Fields{"error": err})
			mgr.Trigger()
		}
	}()

	mgr.Wait(ctx)
	return nil
}

func cleanupLimiter(ctx context.Context, limiter *ratelimit.Limiter, logger *logging.Logger) {
	ticker := time.NewTicker(limiterCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Cleanup(limiterMaxIdle); n > 0 {
				logger.Debug("Removed idle rate limiters", logging.Fields{"count": n})
			}
		}
	}
}
