package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	quit      key.Binding
	nextFocus key.Binding
	prevFocus key.Binding
	submit    key.Binding
	activate  key.Binding
	toggle    key.Binding
	dismiss   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		nextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		prevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "generate"),
		),
		activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "press button"),
		),
		toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle refine"),
		),
		dismiss: key.NewBinding(
			key.WithKeys("esc", "enter"),
			key.WithHelp("esc", "dismiss"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextFocus, k.submit, k.toggle, k.quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.prevFocus, k.activate, k.dismiss}}
}
