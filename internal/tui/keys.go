package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the notes screen.
type KeyMap struct {
	OpenDirectory key.Binding
	Search        key.Binding
	Rename        key.Binding
	New           key.Binding
	Menu          key.Binding
	FocusToggle   key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding

	// Directory picker overlay.
	PickerChoose key.Binding
	PickerCancel key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	OpenDirectory: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "open directory"),
	),
	Search: key.NewBinding(
		key.WithKeys("ctrl+f"),
		key.WithHelp("C-f", "search"),
	),
	Rename: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "rename"),
	),
	New: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("C-n", "new"),
	),
	Menu: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("C-x", "menu"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch pane"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	PickerChoose: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "use this directory"),
	),
	PickerCancel: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}
