package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/vidgen/internal/poller"
	"github.com/psantana5/vidgen/internal/registry"
	"github.com/psantana5/vidgen/internal/render"
	"github.com/psantana5/vidgen/internal/submit"
	"github.com/psantana5/vidgen/pkg/client"
	"github.com/psantana5/vidgen/pkg/models"
)

type fakeBackend struct {
	mu       sync.Mutex
	ids      []string
	err      error
	created  []models.GenerationRequest
	statuses map[string]models.StatusRecord
}

func (b *fakeBackend) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	b.created = append(b.created, req)
	id := b.ids[0]
	b.ids = b.ids[1:]
	return id, nil
}

func (b *fakeBackend) Status(ctx context.Context, id string) (*models.StatusRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.statuses[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &rec, nil
}

func newTestModel(t *testing.T) (*Model, *fakeBackend, *registry.Registry) {
	t.Helper()
	backend := &fakeBackend{ids: []string{"abc123", "def456"}, statuses: map[string]models.StatusRecord{}}
	reg := registry.New()

	m := New(context.Background(), Config{
		Submitter:     submit.New(submit.Config{Creator: backend, OnCreated: reg.Prepend}),
		Registry:      reg,
		Poller:        poller.New(poller.Config{Fetcher: backend, Source: reg}),
		Locator:       client.New(""),
		DefaultRefine: true,
	})
	return m, backend, reg
}

func ctrlS() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyCtrlS} }

// submitNow runs the submission the way the program would after ctrl+s
func submitNow(t *testing.T, m *Model) tea.Msg {
	t.Helper()
	_, cmd := m.Update(ctrlS())
	require.NotNil(t, cmd)
	require.True(t, m.submitting)

	form, err := m.currentForm()
	require.NoError(t, err)
	return m.submitCmd(form)()
}

func TestInitialForm(t *testing.T) {
	m, _, _ := newTestModel(t)

	assert.Equal(t, "", m.prompt.Value())
	assert.Equal(t, "10", m.duration.Value())
	assert.True(t, m.refine)
	assert.Nil(t, m.requestRound(), "no polling without jobs")

	view := m.View()
	assert.Contains(t, view, "Generate Video")
	assert.NotContains(t, view, "Your Videos")
}

func TestBlankPromptAlertsWithoutRequest(t *testing.T) {
	m, backend, reg := newTestModel(t)
	m.prompt.SetValue("   ")

	_, cmd := m.Update(ctrlS())
	assert.Nil(t, cmd)
	assert.Equal(t, "Please enter a prompt", m.alert)
	assert.False(t, m.submitting)
	assert.Empty(t, backend.created)
	assert.Zero(t, reg.Len())
}

func TestBadDurationAlerts(t *testing.T) {
	m, backend, _ := newTestModel(t)
	m.prompt.SetValue("a cat")
	m.duration.SetValue("1x")

	m.Update(ctrlS())
	assert.Equal(t, "Please enter a valid duration", m.alert)
	assert.Empty(t, backend.created)
}

func TestAlertIsBlocking(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.alert = "Failed to create job"

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	assert.Equal(t, "", m.prompt.Value())
	assert.Equal(t, "Failed to create job", m.alert)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.alert)
}

func TestSubmitSuccessResetsFormAndPolls(t *testing.T) {
	m, backend, reg := newTestModel(t)
	m.prompt.SetValue("a cat")
	m.duration.SetValue("25")

	msg := submitNow(t, m)
	require.IsType(t, jobCreatedMsg{}, msg)

	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd)
	assert.False(t, m.submitting)
	assert.True(t, m.polling)

	assert.Equal(t, []models.GenerationRequest{{Prompt: "a cat", DurationSeconds: 25, RefineWithAI: true}}, backend.created)
	assert.Equal(t, []string{"abc123"}, reg.IDs())
	assert.Equal(t, "", m.prompt.Value())
	assert.Equal(t, "10", m.duration.Value())
	assert.True(t, m.refine)

	view := m.View()
	assert.Contains(t, view, "Job ID: abc123...")
	assert.Contains(t, view, render.Placeholder)
}

func TestSubmitFailurePreservesForm(t *testing.T) {
	m, backend, reg := newTestModel(t)
	backend.err = errors.New("connection refused")
	m.prompt.SetValue("a cat")
	m.refine = false

	msg := submitNow(t, m)
	require.IsType(t, submitFailedMsg{}, msg)

	m.Update(msg)
	assert.Equal(t, "Failed to create job", m.alert)
	assert.Equal(t, "a cat", m.prompt.Value())
	assert.False(t, m.refine)
	assert.Zero(t, reg.Len())
	assert.NotContains(t, m.View(), "Job ID:")
}

func TestRoundRendersLatestStatus(t *testing.T) {
	m, backend, _ := newTestModel(t)
	m.prompt.SetValue("a cat")
	m.Update(submitNow(t, m))

	backend.statuses["abc123"] = models.StatusRecord{JobID: "abc123", Status: models.JobStatusQueued}
	_, cmd := m.Update(m.roundCmd()())
	assert.NotNil(t, cmd, "next tick is armed after the round")
	assert.False(t, m.polling)
	assert.Contains(t, m.View(), "QUEUED")

	videoURL := "/files/abc123.mp4"
	backend.statuses["abc123"] = models.StatusRecord{JobID: "abc123", Status: models.JobStatusDone, VideoURL: &videoURL}
	m.polling = true
	m.Update(m.roundCmd()())

	view := m.View()
	assert.Contains(t, view, "/files/abc123.mp4")
	assert.Contains(t, view, "/api/video/file/abc123")
}

func TestStaleTickIgnored(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.prompt.SetValue("a cat")
	m.Update(submitNow(t, m))
	m.Update(roundDoneMsg{statuses: map[string]models.StatusRecord{}})

	seq := m.tickSeq
	_, cmd := m.Update(pollTickMsg{seq: seq - 1})
	assert.Nil(t, cmd)
	assert.False(t, m.polling)

	_, cmd = m.Update(pollTickMsg{seq: seq})
	assert.NotNil(t, cmd)
	assert.True(t, m.polling)
}

func TestJobCreatedDuringRoundPollsAfterIt(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.prompt.SetValue("a cat")
	m.Update(submitNow(t, m))
	require.True(t, m.polling)

	m.prompt.SetValue("a dog")
	_, cmd := m.Update(submitNow(t, m))
	assert.Nil(t, cmd, "round already in flight")
	assert.True(t, m.pending)

	_, cmd = m.Update(roundDoneMsg{statuses: map[string]models.StatusRecord{}})
	assert.NotNil(t, cmd)
	assert.True(t, m.polling)
	assert.False(t, m.pending)
	assert.Equal(t, []string{"def456", "abc123"}, m.ids)
}

func TestToggleRefine(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusRefine, m.focus)

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.False(t, m.refine)
}

func TestQuitCancelsInFlightWork(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.prompt.SetValue("a cat")
	m.Update(submitNow(t, m))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.ErrorIs(t, m.ctx.Err(), context.Canceled)

	_, cmd = m.Update(roundDoneMsg{statuses: map[string]models.StatusRecord{"abc123": {Status: models.JobStatusDone}}})
	assert.Nil(t, cmd)
	assert.Empty(t, m.statuses)
}
