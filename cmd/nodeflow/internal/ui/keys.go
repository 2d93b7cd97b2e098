package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Palette   key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Reset     key.Binding
	CycleType key.Binding
	Toggle    key.Binding
	Edit      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var DefaultKeyMap = KeyMap{
	Palette: key.NewBinding(
		key.WithKeys("n", "/"),
		key.WithHelp("n", "add node"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "pan up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "pan down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "pan left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "pan right"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	Reset: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "reset view"),
	),
	CycleType: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "value type"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "toggle bool"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit value"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap for the canvas
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Palette, k.ZoomIn, k.ZoomOut, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap for the canvas
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Palette, k.Help, k.Quit},
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Reset},
		{k.CycleType, k.Toggle, k.Edit},
	}
}

// promptKeys is the key help shown while a text field has focus
type promptKeys struct {
	keys KeyMap
	list bool // the prompt drives a selectable list
}

func (p promptKeys) ShortHelp() []key.Binding {
	bs := []key.Binding{p.keys.Enter, p.keys.Back}
	if p.list {
		bs = append([]key.Binding{
			key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "select")),
		}, bs...)
	}
	return bs
}

func (p promptKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{p.ShortHelp()}
}

var _ help.KeyMap = KeyMap{}
var _ help.KeyMap = promptKeys{}
