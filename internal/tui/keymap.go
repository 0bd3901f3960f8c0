package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the dashboard.
type KeyMap struct {
	Copy      key.Binding
	ToggleLog key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns a KeyMap with default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy URLs"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "toggle log"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Copy, k.ToggleLog, k.Quit}
}

// FullHelp returns the bindings grouped for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
