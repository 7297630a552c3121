package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/psantana5/vidgen/internal/backendstub"
	"github.com/psantana5/vidgen/pkg/logging"
	"github.com/psantana5/vidgen/pkg/middleware"
	"github.com/psantana5/vidgen/pkg/shutdown"
)

var (
	stubListen      string
	stubQueueDelay  time.Duration
	stubRenderDelay time.Duration
	stubFailKeyword string
)

// stubCmd represents the stub-backend command
var stubCmd = &cobra.Command{
	Use:   "stub-backend",
	Short: "Run an in-memory development backend",
	Long: `Serve the backend API from memory. Jobs move from queued to running to done
on a timer and every finished job serves the same placeholder video.

Example:
  vidgen stub-backend --listen :8081 --render-delay 5s --fail-keyword explode`,
	RunE: runStub,
}

func init() {
	rootCmd.AddCommand(stubCmd)

	stubCmd.Flags().StringVar(&stubListen, "listen", ":8081", "listen address")
	stubCmd.Flags().DurationVar(&stubQueueDelay, "queue-delay", backendstub.DefaultTiming.QueueDelay, "time a job stays queued")
	stubCmd.Flags().DurationVar(&stubRenderDelay, "render-delay", backendstub.DefaultTiming.RenderDelay, "time a job stays running")
	stubCmd.Flags().StringVar(&stubFailKeyword, "fail-keyword", "", "prompts containing this word fail instead of completing")
}

func runStub(cmd *cobra.Command, args []string) error {
	logger, err := appCfg.NewLogger("stub-backend")
	if err != nil {
		return err
	}

	store := backendstub.NewStore(backendstub.Timing{
		QueueDelay:  stubQueueDelay,
		RenderDelay: stubRenderDelay,
	}, stubFailKeyword)

	router := backendstub.NewHandler(store, logger).Router()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(logger, "/health"))

	httpServer := &http.Server{
		Addr:              stubListen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheme, err := prepareTLS(httpServer, appCfg.TLS, "vidgen-stub", logger)
	if err != nil {
		logger.Close()
		return err
	}

	mgr := shutdown.New(shutdownTimeout, logger)
	mgr.Register("logger", shutdown.CloseResource(logger))
	mgr.Register("http-server", shutdown.StopHTTPServer(httpServer))

	go func() {
		logger.Info("Stub backend listening", logging.Fields{
			"addr":         stubListen,
			"scheme":       scheme,
			"queue_delay":  stubQueueDelay.String(),
			"render_delay": stubRenderDelay.String(),
		})
		if err := listen(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", logging.Fields{"error": err})
			mgr.Trigger()
		}
	}()

	mgr.Wait(context.Background())
	return nil
}
