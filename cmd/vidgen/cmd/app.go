package cmd

import (
	"context"
	"io"

	"github.com/psantana5/vidgen/internal/metrics"
	"github.com/psantana5/vidgen/internal/poller"
	"github.com/psantana5/vidgen/internal/registry"
	"github.com/psantana5/vidgen/internal/submit"
	"github.com/psantana5/vidgen/pkg/client"
	"github.com/psantana5/vidgen/pkg/logging"
	"github.com/psantana5/vidgen/pkg/models"
	tlsutil "github.com/psantana5/vidgen/pkg/tls"
	"github.com/psantana5/vidgen/pkg/tracing"
)

// app is the shared core behind every front-end: one session with its own
// registry, submitter and poller.
type app struct {
	logger    *logging.Logger
	metrics   *metrics.Metrics
	tracer    *tracing.Provider
	client    *client.Client
	registry  *registry.Registry
	submitter *submit.Submitter
	poller    *poller.Poller
}

type appOptions struct {
	component string
	// console replaces stdout for console logging; nil keeps stdout.
	console io.Writer
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	logger, err := appCfg.NewLogger(opts.component)
	if err != nil {
		return nil, err
	}
	if opts.console != nil {
		logger.SetConsole(opts.console)
	}

	tp, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "vidgen-" + opts.component,
		ServiceVersion: version,
		OTLPEndpoint:   appCfg.Tracing.Endpoint,
		Enabled:        appCfg.Tracing.Enabled,
		SampleRatio:    appCfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Close()
		return nil, err
	}

	base, err := tlsutil.Transport(appCfg.TLS.CAFile)
	if err != nil {
		logger.Close()
		return nil, err
	}

	m := metrics.New()
	c := client.New(appCfg.BackendURL,
		client.WithTimeout(appCfg.RequestTimeout),
		client.WithTransport(m.InstrumentTransport(base)),
		client.WithTracer(tp.Tracer()),
	)
	reg := registry.New()

	a := &app{
		logger:   logger,
		metrics:  m,
		tracer:   tp,
		client:   c,
		registry: reg,
	}
	a.submitter = submit.New(submit.Config{
		Creator:         c,
		OnCreated:       reg.Prepend,
		DefaultDuration: appCfg.DefaultDuration,
		Logger:          logger.WithField("module", "submit"),
		Metrics:         m,
	})
	a.poller = a.newPoller(nil)
	return a, nil
}

// newPoller builds a poller over the session registry. onRound may be nil.
func (a *app) newPoller(onRound func(map[string]models.StatusRecord)) *poller.Poller {
	return poller.New(poller.Config{
		Fetcher:      a.client,
		Source:       a.registry,
		Interval:     appCfg.PollInterval,
		PollTerminal: appCfg.PollTerminal,
		Logger:       a.logger.WithField("module", "poller"),
		Metrics:      a.metrics,
		OnRound:      onRound,
	})
}

// track adds ids so that IDs() returns them in the order given
func (a *app) track(ids []string) {
	for i := len(ids) - 1; i >= 0; i-- {
		a.registry.Prepend(ids[i])
	}
}

func (a *app) close(ctx context.Context) {
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("Failed to flush traces", logging.Fields{"error": err})
	}
	a.logger.Close()
}
