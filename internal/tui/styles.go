package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	label     lipgloss.Style
	focused   lipgloss.Style
	button    lipgloss.Style
	buttonOn  lipgloss.Style
	disabled  lipgloss.Style
	alert     lipgloss.Style
	heading   lipgloss.Style
	card      lipgloss.Style
	jobID     lipgloss.Style
	message   lipgloss.Style
	errorText lipgloss.Style
	link      lipgloss.Style
	status    map[string]lipgloss.Style
}

func newStyles() styles {
	statusBase := lipgloss.NewStyle().Bold(true)
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginBottom(1),
		label:    lipgloss.NewStyle().Faint(true),
		focused:  lipgloss.NewStyle().Foreground(lipgloss.Color("#2F6FEB")).Bold(true),
		button:   lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("#444444")).Foreground(lipgloss.Color("#FFFFFF")),
		buttonOn: lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("#2F6FEB")).Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
		disabled: lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("#8CA9E6")).Foreground(lipgloss.Color("#EEEEEE")),
		alert: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#CF222E")).
			Foreground(lipgloss.Color("#CF222E")).
			Padding(0, 1),
		heading: lipgloss.NewStyle().Bold(true).MarginTop(1),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#555555")).
			Padding(0, 1).
			Width(64),
		jobID:     lipgloss.NewStyle().Bold(true),
		message:   lipgloss.NewStyle().Faint(true),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("#CF222E")),
		link:      lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#2F6FEB")),
		status: map[string]lipgloss.Style{
			"queued":  statusBase.Foreground(lipgloss.Color("#9A6700")),
			"running": statusBase.Foreground(lipgloss.Color("#0969DA")),
			"done":    statusBase.Foreground(lipgloss.Color("#1A7F37")),
			"failed":  statusBase.Foreground(lipgloss.Color("#CF222E")),
			"unknown": statusBase.Faint(true),
		},
	}
}

func (s styles) statusStyle(label string) lipgloss.Style {
	if st, ok := s.status[label]; ok {
		return st
	}
	return s.status["unknown"]
}
