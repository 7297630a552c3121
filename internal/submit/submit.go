package submit

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/psantana5/vidgen/internal/metrics"
	"github.com/psantana5/vidgen/pkg/logging"
	"github.com/psantana5/vidgen/pkg/models"
)

// Creator issues the outbound creation request
type Creator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (string, error)
}

// Form is the user-editable submission state
type Form struct {
	Prompt          string
	DurationSeconds int
	RefineWithAI    bool
}

// Reset returns the form as it looks after a successful submission: prompt
// cleared, duration back to the default, refinement flag untouched.
func (f Form) Reset(defaultDuration int) Form {
	return Form{
		Prompt:          "",
		DurationSeconds: defaultDuration,
		RefineWithAI:    f.RefineWithAI,
	}
}

// Validate rejects prompts that are empty after trimming
func (f Form) Validate() error {
	if strings.TrimSpace(f.Prompt) == "" {
		return &ValidationError{Field: "prompt", Reason: "must not be empty"}
	}
	return nil
}

// Request builds the wire request. The prompt is sent as entered and the
// duration is not clamped; the backend owns those rules.
func (f Form) Request() models.GenerationRequest {
	return models.GenerationRequest{
		Prompt:          f.Prompt,
		DurationSeconds: f.DurationSeconds,
		RefineWithAI:    f.RefineWithAI,
	}
}

// Submitter sends at most one creation request at a time
type Submitter struct {
	creator         Creator
	onCreated       func(jobID string)
	defaultDuration int
	logger          *logging.Logger
	metrics         *metrics.Metrics
	busy            atomic.Bool
}

// Config wires a Submitter
type Config struct {
	Creator         Creator
	OnCreated       func(jobID string)
	DefaultDuration int
	Logger          *logging.Logger
	Metrics         *metrics.Metrics
}

// New creates a Submitter
func New(cfg Config) *Submitter {
	if cfg.DefaultDuration == 0 {
		cfg.DefaultDuration = models.DefaultDurationSeconds
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Submitter{
		creator:         cfg.Creator,
		onCreated:       cfg.OnCreated,
		defaultDuration: cfg.DefaultDuration,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
	}
}

// DefaultForm is the initial form state
func (s *Submitter) DefaultForm(refine bool) Form {
	return Form{DurationSeconds: s.defaultDuration, RefineWithAI: refine}
}

// Busy reports whether a creation request is outstanding; front-ends use it
// to disable the submit control.
func (s *Submitter) Busy() bool {
	return s.busy.Load()
}

// Submit validates the form, sends one creation request and hands the new
// job identifier to the OnCreated callback. It returns the form state the
// caller should show next: reset on success, unchanged on any error.
func (s *Submitter) Submit(ctx context.Context, form Form) (Form, string, error) {
	if err := form.Validate(); err != nil {
		s.metrics.RecordSubmission(metrics.SubmissionInvalid)
		return form, "", err
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.metrics.RecordSubmission(metrics.SubmissionBusy)
		return form, "", ErrSubmitInFlight
	}
	defer s.busy.Store(false)

	jobID, err := s.creator.Generate(ctx, form.Request())
	if err != nil {
		s.metrics.RecordSubmission(metrics.SubmissionFailed)
		s.logger.Error("Failed to create job", logging.Fields{
			"error":            err,
			"duration_seconds": form.DurationSeconds,
		})
		return form, "", &SubmissionError{Err: err}
	}

	s.metrics.RecordSubmission(metrics.SubmissionCreated)
	s.logger.Info("Job created", logging.Fields{"job_id": jobID})

	if s.onCreated != nil {
		s.onCreated(jobID)
	}
	return form.Reset(s.defaultDuration), jobID, nil
}
