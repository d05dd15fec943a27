package pad

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the remote pad.
type KeyMap struct {
	// Menu
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Toggle key.Binding

	// Holds
	HoldY     key.Binding
	HoldX     key.Binding
	HoldStart key.Binding

	Popup key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Up, k.Down, k.Select, k.Back, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Up, k.Down, k.Select, k.Back},
		{k.HoldY, k.HoldX, k.HoldStart},
		{k.Popup, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("m", "tab"),
			key.WithHelp("m/tab", "menu"),
		),
		HoldY: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "hold Y"),
		),
		HoldX: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "hold X"),
		),
		HoldStart: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "hold Start"),
		),
		Popup: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "test popup"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
