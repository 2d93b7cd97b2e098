// Package ui is the terminal host: a bubbletea program that drives the editor
// with terminal mouse and key events and rasterises the scene into cells.
package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/recera/nodeflow/pkg/editor"
	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/gesture"
	"github.com/recera/nodeflow/pkg/graph"
	"github.com/recera/nodeflow/pkg/nodes"
	"github.com/recera/nodeflow/pkg/palette"
)

const (
	// DoubleClickInterval is the longest gap between two presses on the same
	// cell that still counts as a double activation
	DoubleClickInterval = 500 * time.Millisecond

	// WheelStep is the deltaY one wheel notch or zoom key is worth
	WheelStep = 100.0

	pointerID = 1
)

// Mode is what the keyboard is currently driving
type Mode int

const (
	ModeCanvas Mode = iota
	ModePalette
	ModeEdit // free-text value editing
)

// Model is the bubbletea model of the terminal host
type Model struct {
	ed   *editor.Editor
	log  *zap.Logger
	keys KeyMap
	help help.Model

	search textinput.Model
	edit   textinput.Model
	mode   Mode

	// selected is the value node the t/x/e keys act on
	selected graph.NodeID

	width  int
	height int

	lastPress time.Time
	lastCol   int
	lastRow   int
	now       func() time.Time

	status string
}

// NewModel creates a model driving ed
func NewModel(ed *editor.Editor, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	search := textinput.New()
	search.Placeholder = "Search nodes…"
	search.Prompt = "› "
	search.CharLimit = 64
	search.Width = 32

	edit := textinput.New()
	edit.Prompt = "= "
	edit.CharLimit = 256
	edit.Width = 32

	return Model{
		ed:     ed,
		log:    log,
		keys:   DefaultKeyMap,
		help:   help.New(),
		search: search,
		edit:   edit,
		now:    time.Now,
	}
}

// Editor returns the driven editor
func (m Model) Editor() *editor.Editor { return m.ed }

// Mode returns what the keyboard is currently driving
func (m Model) Mode() Mode { return m.mode }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case ModeCanvas:
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			cmd = m.handleCanvasKey(msg)
		case ModePalette:
			cmd = m.handlePaletteKey(msg)
		case ModeEdit:
			cmd = m.handleEditKey(msg)
		}
	}

	return m, tea.Batch(cmd, m.sync())
}

// canvasRows is the number of rows left for the canvas under the footer
func (m Model) canvasRows() int {
	rows := m.height - lipgloss.Height(m.renderFooter())
	if rows < 0 {
		return 0
	}
	return rows
}

func (m *Model) resize() {
	m.ed.Resize(float64(m.width*CellWidth), float64(m.canvasRows()*CellHeight))
}

// sync brings the keyboard mode in line with the palette state, which the
// editor may have changed on its own (a click outside closes it)
func (m *Model) sync() tea.Cmd {
	open := m.ed.Palette().IsOpen()
	switch {
	case open && m.mode != ModePalette:
		m.mode = ModePalette
		m.edit.Blur()
		m.search.SetValue(m.ed.Palette().Query())
		return m.search.Focus()
	case !open && m.mode == ModePalette:
		m.mode = ModeCanvas
		m.search.Blur()
		if text := closeReasonText(m.ed.Palette().ClosedBy()); text != "" {
			m.status = text
		}
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.mode == ModeEdit {
		m.mode = ModeCanvas
		m.edit.Blur()
	}
	pos := CellCenter(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if tea.MouseEvent(msg).IsWheel() && m.mode == ModePalette {
			return
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.ed.HandleWheel(gesture.WheelEvent{Pos: pos, DeltaY: -WheelStep})
		case tea.MouseButtonWheelDown:
			m.ed.HandleWheel(gesture.WheelEvent{Pos: pos, DeltaY: WheelStep})
		case tea.MouseButtonLeft:
			m.press(msg.X, msg.Y, pos)
		case tea.MouseButtonMiddle:
			m.ed.HandlePointer(gesture.PointerEvent{
				Type: gesture.PointerDown, PointerID: pointerID, Button: gesture.ButtonMiddle, Pos: pos,
			})
		}

	case tea.MouseActionMotion:
		m.ed.HandlePointer(gesture.PointerEvent{Type: gesture.PointerMove, PointerID: pointerID, Pos: pos})

	case tea.MouseActionRelease:
		m.ed.HandlePointer(gesture.PointerEvent{Type: gesture.PointerUp, PointerID: pointerID, Pos: pos})
	}
}

func (m *Model) press(col, row int, pos geom.Point) {
	now := m.now()
	double := col == m.lastCol && row == m.lastRow &&
		!m.lastPress.IsZero() && now.Sub(m.lastPress) <= DoubleClickInterval
	m.lastCol, m.lastRow = col, row
	m.lastPress = now
	if double {
		m.lastPress = time.Time{}
		m.ed.HandlePointer(gesture.PointerEvent{Type: gesture.PointerDouble, PointerID: pointerID, Pos: pos})
		return
	}

	if !m.ed.Palette().IsOpen() {
		m.selected = 0
		if n := m.ed.Graph().NodeAt(m.ed.Viewport().ScreenToContent(pos)); n != nil && nodes.Value(n) != nil {
			m.selected = n.ID
		}
	}
	m.ed.HandlePointer(gesture.PointerEvent{
		Type: gesture.PointerDown, PointerID: pointerID, Button: gesture.ButtonPrimary, Pos: pos,
	})
}

func (m *Model) handleCanvasKey(msg tea.KeyMsg) tea.Cmd {
	view := m.ed.Viewport()
	center := view.Size().Div(2)
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Palette):
		m.ed.OpenPalette()
	case key.Matches(msg, m.keys.Up):
		view.Translate(0, CellHeight*2)
	case key.Matches(msg, m.keys.Down):
		view.Translate(0, -CellHeight*2)
	case key.Matches(msg, m.keys.Left):
		view.Translate(CellWidth*4, 0)
	case key.Matches(msg, m.keys.Right):
		view.Translate(-CellWidth*4, 0)
	case key.Matches(msg, m.keys.ZoomIn):
		m.ed.HandleWheel(gesture.WheelEvent{Pos: center, DeltaY: -WheelStep})
	case key.Matches(msg, m.keys.ZoomOut):
		m.ed.HandleWheel(gesture.WheelEvent{Pos: center, DeltaY: WheelStep})
	case key.Matches(msg, m.keys.Reset):
		view.Reset()
	case key.Matches(msg, m.keys.CycleType):
		m.cycleType()
	case key.Matches(msg, m.keys.Toggle):
		m.report(m.ed.ToggleValue(m.selected))
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()
	case key.Matches(msg, m.keys.Back):
		m.selected = 0
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	}
	return nil
}

func (m *Model) handlePaletteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.ed.HandleKey(gesture.KeyEvent{Key: gesture.KeyEscape})
		return nil
	case "up", "ctrl+p":
		m.ed.MovePaletteSelection(-1)
		return nil
	case "down", "ctrl+n", "tab":
		m.ed.MovePaletteSelection(1)
		return nil
	case "enter":
		n, err := m.ed.ActivateSelectedPaletteItem()
		if err != nil {
			m.report(err)
			return nil
		}
		m.status = fmt.Sprintf("Added %s", n.Label)
		if nodes.Value(n) != nil {
			m.selected = n.ID
		}
		return nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != before {
		m.ed.SetPaletteQuery(q)
	}
	return cmd
}

func (m *Model) startEdit() tea.Cmd {
	n := m.ed.Graph().Node(m.selected)
	if n == nil {
		m.status = "Select a value node first"
		return nil
	}
	v := nodes.Value(n)
	if v == nil {
		m.report(fmt.Errorf("node %s: %w", n.Label, editor.ErrNotValueNode))
		return nil
	}
	if v.Type.Widget() == nodes.WidgetToggle {
		m.report(m.ed.ToggleValue(n.ID))
		return nil
	}
	m.mode = ModeEdit
	m.edit.Placeholder = v.Type.Placeholder()
	m.edit.SetValue(v.Text)
	m.edit.CursorEnd()
	return m.edit.Focus()
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.report(m.ed.SetValueText(m.selected, m.edit.Value()))
		fallthrough
	case "esc":
		m.mode = ModeCanvas
		m.edit.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	return cmd
}

func (m *Model) cycleType() {
	n := m.ed.Graph().Node(m.selected)
	if n == nil {
		m.status = "Select a value node first"
		return
	}
	v := nodes.Value(n)
	if v == nil {
		return
	}
	next := nodes.ValueTypes[0]
	for i, t := range nodes.ValueTypes {
		if t == v.Type && i+1 < len(nodes.ValueTypes) {
			next = nodes.ValueTypes[i+1]
		}
	}
	m.report(m.ed.SetValueType(n.ID, next))
}

func (m *Model) report(err error) {
	if err == nil {
		return
	}
	m.log.Debug("Command failed", zap.Error(err))
	m.status = err.Error()
}

// closeReasonText is shown in the status line after the palette closes
func closeReasonText(r palette.CloseReason) string {
	switch r {
	case palette.CancelKey:
		return "Cancelled"
	case palette.ClickOutside:
		return "Closed"
	}
	return ""
}
