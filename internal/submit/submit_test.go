package submit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/psantana5/vidgen/internal/metrics"
	"github.com/psantana5/vidgen/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	mu       sync.Mutex
	requests []models.GenerationRequest
	jobID    string
	err      error
	block    chan struct{}
	entered  chan struct{}
}

func (f *fakeCreator) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return f.jobID, f.err
}

func (f *fakeCreator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestSubmitSuccessResetsFormAndNotifies(t *testing.T) {
	creator := &fakeCreator{jobID: "abc123"}
	var created []string
	s := New(Config{Creator: creator, OnCreated: func(id string) { created = append(created, id) }})

	form := Form{Prompt: "a cat", DurationSeconds: 25, RefineWithAI: false}
	next, id, err := s.Submit(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, "abc123", id)
	assert.Equal(t, []string{"abc123"}, created)
	assert.Equal(t, Form{Prompt: "", DurationSeconds: 10, RefineWithAI: false}, next)
	require.Len(t, creator.requests, 1)
	assert.Equal(t, models.GenerationRequest{Prompt: "a cat", DurationSeconds: 25, RefineWithAI: false}, creator.requests[0])
}

func TestSubmitRejectsBlankPrompt(t *testing.T) {
	for _, prompt := range []string{"", "   ", "\n\t "} {
		creator := &fakeCreator{jobID: "never"}
		called := false
		s := New(Config{Creator: creator, OnCreated: func(string) { called = true }})

		form := Form{Prompt: prompt, DurationSeconds: 12, RefineWithAI: true}
		next, id, err := s.Submit(context.Background(), form)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "prompt %q", prompt)
		assert.Equal(t, "prompt", verr.Field)
		assert.Empty(t, id)
		assert.Equal(t, form, next)
		assert.Zero(t, creator.calls())
		assert.False(t, called)
		assert.Equal(t, "Please enter a prompt", AlertText(err))
	}
}

func TestSubmitFailurePreservesForm(t *testing.T) {
	creator := &fakeCreator{err: errors.New("connection refused")}
	called := false
	m := metrics.New()
	s := New(Config{Creator: creator, OnCreated: func(string) { called = true }, Metrics: m})

	form := Form{Prompt: "a cat", DurationSeconds: 42, RefineWithAI: true}
	next, id, err := s.Submit(context.Background(), form)

	var serr *SubmissionError
	require.True(t, errors.As(err, &serr))
	assert.EqualError(t, errors.Unwrap(err), "connection refused")
	assert.Empty(t, id)
	assert.Equal(t, form, next)
	assert.False(t, called)
	assert.False(t, s.Busy())
	assert.Equal(t, "Failed to create job", AlertText(err))

	series, err := testutil.GatherAndCount(m.Registry(), "vidgen_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	creator := &fakeCreator{jobID: "first", block: make(chan struct{}), entered: make(chan struct{})}
	s := New(Config{Creator: creator})

	done := make(chan error, 1)
	go func() {
		_, _, err := s.Submit(context.Background(), Form{Prompt: "one", DurationSeconds: 10})
		done <- err
	}()

	<-creator.entered
	assert.True(t, s.Busy())

	_, _, err := s.Submit(context.Background(), Form{Prompt: "two", DurationSeconds: 10})
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.Equal(t, "A job is already being created", AlertText(err))

	close(creator.block)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
	assert.Equal(t, 1, creator.calls())
}

func TestDefaultForm(t *testing.T) {
	s := New(Config{Creator: &fakeCreator{}, DefaultDuration: 15})
	assert.Equal(t, Form{DurationSeconds: 15, RefineWithAI: true}, s.DefaultForm(true))
}

func TestDurationIsNotClamped(t *testing.T) {
	creator := &fakeCreator{jobID: "x"}
	s := New(Config{Creator: creator})

	_, _, err := s.Submit(context.Background(), Form{Prompt: "p", DurationSeconds: 90})
	require.NoError(t, err)
	assert.Equal(t, 90, creator.requests[0].DurationSeconds)
}
