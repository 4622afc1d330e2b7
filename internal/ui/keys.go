package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application. Single-character
// bindings only apply while the results pane has focus; with the query input
// focused those keys are typed into the query.
type keyMap struct {
	// Global
	Quit      key.Binding
	Submit    key.Binding
	Focus     key.Binding
	Cancel    key.Binding
	WebSearch key.Binding
	Demo      key.Binding
	MoreHits  key.Binding
	FewerHits key.Binding

	// Results pane
	Copy       key.Binding
	Export     key.Binding
	History    key.Binding
	CycleTheme key.Binding
	Help       key.Binding
	EditQuery  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Run query"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Switch input/results"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel request / leave input"),
		),
		WebSearch: key.NewBinding(
			key.WithKeys("alt+w"),
			key.WithHelp("alt+w", "Toggle web search"),
		),
		Demo: key.NewBinding(
			key.WithKeys("alt+m"),
			key.WithHelp("alt+m", "Toggle demo mode"),
		),
		MoreHits: key.NewBinding(
			key.WithKeys("ctrl+up", "+", "="),
			key.WithHelp("+/ctrl+↑", "More results"),
		),
		FewerHits: key.NewBinding(
			key.WithKeys("ctrl+down", "-"),
			key.WithHelp("-/ctrl+↓", "Fewer results"),
		),

		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy answer"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export markdown"),
		),
		History: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "Recent queries"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		EditQuery: key.NewBinding(
			key.WithKeys("/", "i"),
			key.WithHelp("/", "Edit query"),
		),
	}
}
