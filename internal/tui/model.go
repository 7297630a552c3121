// Package tui is the terminal front-end. All state lives on the bubbletea
// message loop; submissions and poll rounds run as commands and report back
// as messages.
package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/psantana5/vidgen/internal/poller"
	"github.com/psantana5/vidgen/internal/registry"
	"github.com/psantana5/vidgen/internal/render"
	"github.com/psantana5/vidgen/internal/submit"
	"github.com/psantana5/vidgen/pkg/logging"
	"github.com/psantana5/vidgen/pkg/models"
)

type focusField int

const (
	focusPrompt focusField = iota
	focusDuration
	focusRefine
	focusSubmit
	focusCount
)

// Config wires the terminal front-end
type Config struct {
	Submitter     *submit.Submitter
	Registry      *registry.Registry
	Poller        *poller.Poller
	Locator       render.Locator
	Logger        *logging.Logger
	PollInterval  time.Duration
	DefaultRefine bool
}

type jobCreatedMsg struct {
	form  submit.Form
	jobID string
}

type submitFailedMsg struct {
	form submit.Form
	err  error
}

type roundDoneMsg struct {
	statuses map[string]models.StatusRecord
	aborted  bool
}

type pollTickMsg struct {
	seq int
}

// Model is the bubbletea model of one session
type Model struct {
	cfg    Config
	keys   keyMap
	styles styles
	help   help.Model

	prompt   textarea.Model
	duration textinput.Model
	refine   bool
	focus    focusField
	spinner  spinner.Model

	submitting bool
	alert      string

	ids      []string
	statuses map[string]models.StatusRecord
	polling  bool
	pending  bool
	tickSeq  int

	ctx    context.Context
	cancel context.CancelFunc

	width    int
	quitting bool
}

// New creates the model. Fetches run under ctx, which is also cancelled
// when the user quits.
func New(ctx context.Context, cfg Config) *Model {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = poller.DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)

	m := &Model{
		cfg:      cfg,
		keys:     newKeyMap(),
		styles:   newStyles(),
		help:     help.New(),
		statuses: make(map[string]models.StatusRecord),
		ctx:      ctx,
		cancel:   cancel,
	}

	m.prompt = textarea.New()
	m.prompt.Placeholder = "e.g., A cinematic shot of a spaceship flying through space..."
	m.prompt.ShowLineNumbers = false
	m.prompt.CharLimit = 4096
	m.prompt.SetHeight(4)
	m.prompt.SetWidth(64)

	m.duration = textinput.New()
	m.duration.Prompt = ""
	m.duration.CharLimit = 4
	m.duration.Width = 6

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))

	m.applyForm(cfg.Submitter.DefaultForm(cfg.DefaultRefine))
	m.ids = cfg.Registry.IDs()
	m.setFocus(focusPrompt)
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if cmd := m.requestRound(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) applyForm(f submit.Form) {
	m.prompt.SetValue(f.Prompt)
	m.duration.SetValue(strconv.Itoa(f.DurationSeconds))
	m.refine = f.RefineWithAI
}

// currentForm reads the widgets. A non-numeric duration is a validation error.
func (m *Model) currentForm() (submit.Form, error) {
	form := submit.Form{
		Prompt:       m.prompt.Value(),
		RefineWithAI: m.refine,
	}
	raw := strings.TrimSpace(m.duration.Value())
	if raw == "" {
		return form, nil
	}
	d, err := strconv.Atoi(raw)
	if err != nil {
		return form, &submit.ValidationError{Field: "duration", Reason: "not a number"}
	}
	form.DurationSeconds = d
	return form, nil
}

func (m *Model) setFocus(f focusField) {
	m.focus = f
	m.prompt.Blur()
	m.duration.Blur()
	switch f {
	case focusPrompt:
		m.prompt.Focus()
	case focusDuration:
		m.duration.Focus()
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case jobCreatedMsg:
		m.submitting = false
		m.applyForm(msg.form)
		m.ids = m.cfg.Registry.IDs()
		return m, m.requestRound()

	case submitFailedMsg:
		m.submitting = false
		m.alert = submit.AlertText(msg.err)
		return m, nil

	case roundDoneMsg:
		return m, m.finishRound(msg)

	case pollTickMsg:
		if msg.seq != m.tickSeq || m.polling || m.quitting {
			return m, nil
		}
		return m, m.startRound()
	}

	return m, m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}

	// The alert is blocking: the next key only dismisses it.
	if m.alert != "" {
		if key.Matches(msg, m.keys.dismiss) {
			m.alert = ""
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.nextFocus):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.prevFocus):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m, m.beginSubmit()
	case m.focus == focusSubmit && key.Matches(msg, m.keys.activate):
		return m, m.beginSubmit()
	case m.focus == focusRefine && key.Matches(msg, m.keys.toggle):
		m.refine = !m.refine
		return m, nil
	}

	return m, m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusPrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	case focusDuration:
		m.duration, cmd = m.duration.Update(msg)
	}
	return cmd
}

func (m *Model) beginSubmit() tea.Cmd {
	if m.submitting {
		return nil
	}
	form, err := m.currentForm()
	if err == nil {
		err = form.Validate()
	}
	if err != nil {
		m.alert = submit.AlertText(err)
		return nil
	}

	m.submitting = true
	return tea.Batch(m.submitCmd(form), m.spinner.Tick)
}

func (m *Model) submitCmd(form submit.Form) tea.Cmd {
	sub, ctx := m.cfg.Submitter, m.ctx
	return func() tea.Msg {
		next, jobID, err := sub.Submit(ctx, form)
		if err != nil {
			return submitFailedMsg{form: form, err: err}
		}
		return jobCreatedMsg{form: next, jobID: jobID}
	}
}

// requestRound polls right away, or after the in-flight round finishes
func (m *Model) requestRound() tea.Cmd {
	if len(m.ids) == 0 || m.quitting {
		return nil
	}
	if m.polling {
		m.pending = true
		return nil
	}
	return m.startRound()
}

func (m *Model) startRound() tea.Cmd {
	if len(m.ids) == 0 {
		return nil
	}
	m.polling = true
	// Invalidate any armed tick; the next one is scheduled when this round ends.
	m.tickSeq++
	return m.roundCmd()
}

func (m *Model) roundCmd() tea.Cmd {
	p, ctx := m.cfg.Poller, m.ctx
	return func() tea.Msg {
		result := p.Round(ctx)
		return roundDoneMsg{statuses: p.Snapshot(), aborted: result.Aborted}
	}
}

func (m *Model) finishRound(msg roundDoneMsg) tea.Cmd {
	m.polling = false
	if m.quitting || msg.aborted {
		return nil
	}
	m.statuses = msg.statuses

	if m.pending {
		m.pending = false
		return m.startRound()
	}

	m.tickSeq++
	seq := m.tickSeq
	return tea.Tick(m.cfg.PollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{seq: seq}
	})
}

// Run starts the terminal front-end and blocks until the user quits
func Run(ctx context.Context, cfg Config) error {
	m := New(ctx, cfg)
	defer m.cancel()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
