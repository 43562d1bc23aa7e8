package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

// keyMap holds the actions of the catalog screen. Control chords are used so
// they work while a text field has focus.
type keyMap struct {
	Add    key.Binding
	Update key.Binding
	Delete key.Binding
	Borrow key.Binding
	Return key.Binding
	Focus  key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Add: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("^a", "add"),
		),
		Update: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("^u", "update"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("^d", "delete"),
		),
		Borrow: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("^b", "borrow"),
		),
		Return: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("^r", "return"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "next field"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Update, k.Delete, k.Borrow, k.Return, k.Focus, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// tableKeyMap is the table's default navigation without the ctrl+u and ctrl+d
// half-page chords, which belong to update and delete here. u and d still
// scroll by half a page.
func tableKeyMap() table.KeyMap {
	km := table.DefaultKeyMap()
	km.HalfPageUp.SetKeys("u")
	km.HalfPageUp.SetHelp("u", "½ page up")
	km.HalfPageDown.SetKeys("d")
	km.HalfPageDown.SetHelp("d", "½ page down")
	return km
}
