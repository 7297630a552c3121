package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/psantana5/vidgen/pkg/logging"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// Manager runs registered teardown hooks in reverse order once a signal
// arrives or Trigger is called.
type Manager struct {
	mu      sync.Mutex
	hooks   []hook
	timeout time.Duration
	logger  *logging.Logger
	done    chan struct{}
	once    sync.Once
}

// New creates a new shutdown manager
func New(timeout time.Duration, logger *logging.Logger) *Manager {
	return &Manager{
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Register adds a named teardown hook. Hooks run LIFO.
func (m *Manager) Register(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Trigger initiates shutdown without a signal
func (m *Manager) Trigger() {
	m.once.Do(func() { close(m.done) })
}

// Done is closed when shutdown has been initiated
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until SIGINT/SIGTERM, Trigger, or ctx cancellation, then runs
// the hooks.
func (m *Manager) Wait(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		m.logger.Info("Received signal, shutting down", logging.Fields{"signal": sig.String()})
		m.Trigger()
	case <-m.done:
	case <-ctx.Done():
		m.Trigger()
	}
	m.Shutdown()
}

// Shutdown executes all registered hooks within the manager timeout
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	for i := len(m.hooks) - 1; i >= 0; i-- {
		h := m.hooks[i]
		if err := h.fn(ctx); err != nil {
			m.logger.Error("Shutdown hook failed", logging.Fields{"hook": h.name, "error": err})
			continue
		}
		m.logger.Debug("Shutdown hook complete", logging.Fields{"hook": h.name})
	}
	m.hooks = nil

	m.logger.Info("Graceful shutdown complete")
}

// StopHTTPServer adapts an *http.Server (or anything with Shutdown) to a hook
func StopHTTPServer(server interface{ Shutdown(context.Context) error }) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop HTTP server: %w", err)
		}
		return nil
	}
}

// CloseResource adapts an io.Closer to a hook
func CloseResource(closer interface{ Close() error }) func(context.Context) error {
	return func(context.Context) error {
		return closer.Close()
	}
}
