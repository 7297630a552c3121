// Package poller keeps a status map in sync with the backend by re-fetching
// every tracked job on a fixed cadence.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/psantana5/vidgen/internal/metrics"
	"github.com/psantana5/vidgen/pkg/logging"
	"github.com/psantana5/vidgen/pkg/models"
)

// DefaultInterval is the delay between the end of one round and the start of the next
const DefaultInterval = 3 * time.Second

// Fetcher retrieves the current status of one job
type Fetcher interface {
	Status(ctx context.Context, jobID string) (*models.StatusRecord, error)
}

// Source supplies the tracked identifiers and signals when they change
type Source interface {
	IDs() []string
	Changed() <-chan struct{}
}

// PollError is a failed status fetch for one job in one round
type PollError struct {
	JobID string
	Err   error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("poll %s: %v", e.JobID, e.Err)
}

func (e *PollError) Unwrap() error {
	return e.Err
}

// RoundResult summarises one poll round
type RoundResult struct {
	Tracked int
	Fetched int
	Skipped int
	Errors  []*PollError
	Aborted bool
}

// Config wires a Poller
type Config struct {
	Fetcher  Fetcher
	Source   Source
	Interval time.Duration
	// PollTerminal keeps re-fetching jobs already seen done or failed.
	PollTerminal bool
	Logger       *logging.Logger
	Metrics      *metrics.Metrics
	// OnRound receives a copy of the status map after every merged round.
	OnRound func(map[string]models.StatusRecord)
}

// Poller owns the status map and the polling timer
type Poller struct {
	fetcher      Fetcher
	source       Source
	interval     time.Duration
	pollTerminal bool
	logger       *logging.Logger
	metrics      *metrics.Metrics
	onRound      func(map[string]models.StatusRecord)

	mu       sync.RWMutex
	statuses map[string]models.StatusRecord

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Poller; it does nothing until Run or Start is called
func New(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Poller{
		fetcher:      cfg.Fetcher,
		source:       cfg.Source,
		interval:     cfg.Interval,
		pollTerminal: cfg.PollTerminal,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		onRound:      cfg.OnRound,
		statuses:     make(map[string]models.StatusRecord),
	}
}

// Merge overlays updates on prev and returns a new map. Keys absent from
// updates keep their previous record.
func Merge(prev, updates map[string]models.StatusRecord) map[string]models.StatusRecord {
	next := make(map[string]models.StatusRecord, len(prev)+len(updates))
	for id, rec := range prev {
		next[id] = rec
	}
	for id, rec := range updates {
		next[id] = rec
	}
	return next
}

// Snapshot returns a copy of the status map
func (p *Poller) Snapshot() map[string]models.StatusRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Merge(p.statuses, nil)
}

// Lookup returns the latest known record for a job
func (p *Poller) Lookup(jobID string) (models.StatusRecord, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rec, ok := p.statuses[jobID]
	return rec, ok
}

func (p *Poller) due(ids []string) (due []string, skipped int) {
	if p.pollTerminal {
		return ids, 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, id := range ids {
		if rec, ok := p.statuses[id]; ok && rec.Status.IsTerminal() {
			skipped++
			continue
		}
		due = append(due, id)
	}
	return due, skipped
}

// Round fetches every tracked job one after another and merges the results
// into the status map. A failed fetch is logged and skipped; the other jobs
// still update. If ctx is cancelled mid-round the partial results are dropped.
func (p *Poller) Round(ctx context.Context) RoundResult {
	start := time.Now()
	ids := p.source.IDs()
	due, skipped := p.due(ids)

	result := RoundResult{Tracked: len(ids), Skipped: skipped}
	updates := make(map[string]models.StatusRecord, len(due))

	for _, id := range due {
		if ctx.Err() != nil {
			break
		}
		rec, err := p.fetcher.Status(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			p.metrics.RecordFetch(err)
			perr := &PollError{JobID: id, Err: err}
			result.Errors = append(result.Errors, perr)
			p.logger.Error("Polling error", logging.Fields{"job_id": id, "error": err})
			continue
		}
		p.metrics.RecordFetch(nil)
		updates[id] = *rec
	}

	if ctx.Err() != nil {
		result.Aborted = true
		return result
	}
	result.Fetched = len(updates)

	p.mu.Lock()
	p.statuses = Merge(p.statuses, updates)
	snapshot := Merge(p.statuses, nil)
	p.mu.Unlock()

	p.metrics.RecordRound(time.Since(start), len(ids), snapshot)
	p.logger.Debug("Poll round complete", logging.Fields{
		"tracked": result.Tracked,
		"fetched": result.Fetched,
		"skipped": result.Skipped,
		"errors":  len(result.Errors),
	})

	if p.onRound != nil {
		p.onRound(snapshot)
	}
	return result
}

// Run polls until ctx is cancelled. Nothing is fetched while the source is
// empty. The timer is armed only after a round has fully completed, and a
// change in the source triggers the next round immediately.
func (p *Poller) Run(ctx context.Context) error {
	for {
		changed := p.source.Changed()
		if len(p.source.IDs()) == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-changed:
				continue
			}
		}

		p.Round(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-changed:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Start runs the poller in the background until Stop. Calling Start on a
// running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go func() {
		defer close(done)
		p.Run(ctx)
	}()
}

// Stop clears the pending timer, cancels any in-flight fetch and waits for
// the loop to exit or ctx to expire.
func (p *Poller) Stop(ctx context.Context) error {
	p.runMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.runMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
