package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/psantana5/vidgen/internal/render"
)

func (m *Model) labelFor(f focusField, text string) string {
	if m.focus == f {
		return m.styles.focused.Render("> " + text)
	}
	return m.styles.label.Render("  " + text)
}

func (m *Model) viewButton() string {
	switch {
	case m.submitting:
		return m.styles.disabled.Render(m.spinner.View() + " Creating job...")
	case m.focus == focusSubmit:
		return m.styles.buttonOn.Render("Generate Video")
	default:
		return m.styles.button.Render("Generate Video")
	}
}

func (m *Model) viewForm() string {
	check := "[ ]"
	if m.refine {
		check = "[x]"
	}

	var b strings.Builder
	b.WriteString(m.labelFor(focusPrompt, "Describe your video:") + "\n")
	b.WriteString(m.prompt.View() + "\n\n")
	b.WriteString(m.labelFor(focusDuration, "Duration (seconds):") + " " + m.duration.View() + "\n")
	b.WriteString(m.labelFor(focusRefine, check+" Refine with AI") + "\n\n")
	b.WriteString(m.viewButton())
	return b.String()
}

func (m *Model) viewCard(c render.Card) string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.jobID.Render(c.Header()),
		"  ",
		m.styles.statusStyle(c.StatusLabel).Render(strings.ToUpper(c.StatusLabel)),
	)

	lines := []string{header}
	if c.ShowMessage {
		lines = append(lines, m.styles.message.Render(c.Message))
	}
	if c.ShowVideo {
		lines = append(lines,
			"Video: "+m.styles.link.Render(c.VideoSrc),
			"Download: "+m.styles.link.Render(c.DownloadURL),
		)
	}
	if c.ShowError {
		lines = append(lines, m.styles.errorText.Render("Error: "+c.ErrorText))
	}
	return m.styles.card.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewJobs() string {
	if len(m.ids) == 0 {
		return ""
	}
	cards := render.Cards(m.ids, m.statuses, m.cfg.Locator)

	parts := []string{m.styles.heading.Render(fmt.Sprintf("Your Videos (%d)", len(cards)))}
	for _, c := range cards {
		parts = append(parts, m.viewCard(c))
	}
	return strings.Join(parts, "\n")
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.styles.title.Render("AI Video Generator (Prototype)")}
	if m.alert != "" {
		sections = append(sections, m.styles.alert.Render(m.alert+"  (esc to dismiss)"))
	}
	sections = append(sections, m.viewForm())
	if jobs := m.viewJobs(); jobs != "" {
		sections = append(sections, jobs)
	}
	sections = append(sections, "", m.help.View(m.keys))
	return strings.Join(sections, "\n")
}
