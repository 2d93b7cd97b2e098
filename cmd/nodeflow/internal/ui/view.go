package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/nodeflow/pkg/palette"
)

var (
	accentColor = lipgloss.Color("#8fd3ff")
	nodeColor   = lipgloss.Color("#232730")
	borderColor = lipgloss.Color("#3a404d")
	mutedColor  = lipgloss.Color("#8a93a3")
	dragColor   = lipgloss.Color("#f59e0b")
	errorColor  = lipgloss.Color("#ef4444")

	cellStyles = map[class]lipgloss.Style{
		clsWire:        lipgloss.NewStyle().Foreground(accentColor),
		clsProvisional: lipgloss.NewStyle().Foreground(accentColor).Bold(true),
		clsNode:        lipgloss.NewStyle().Background(nodeColor),
		clsBorder:      lipgloss.NewStyle().Foreground(borderColor).Background(nodeColor),
		clsTitle:       lipgloss.NewStyle().Bold(true).Background(nodeColor),
		clsPort:        lipgloss.NewStyle().Foreground(accentColor).Background(nodeColor),
		clsDragging:    lipgloss.NewStyle().Foreground(dragColor).Background(nodeColor),
		clsSelected:    lipgloss.NewStyle().Foreground(accentColor).Background(nodeColor),
	}

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	groupStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

const paletteWidth = 36

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	rows := m.canvasRows()
	var body string
	if m.mode == ModePalette {
		body = lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, m.renderPalette())
	} else {
		c := NewCanvas(m.width, rows)
		c.Draw(m.ed, m.selected)
		body = c.Render()
	}
	return body + "\n" + m.renderFooter()
}

func (m Model) renderPalette() string {
	p := m.ed.Palette()
	lines := []string{titleStyle.Render("Add node"), m.search.View(), ""}
	for i, row := range p.Rows() {
		switch row.Kind {
		case palette.RowGroup:
			lines = append(lines, groupStyle.Render(strings.ToUpper(row.Group)))
		case palette.RowEmpty:
			lines = append(lines, mutedStyle.Render(palette.NoMatches))
		case palette.RowItem:
			lines = append(lines, m.renderItem(row.Item, i == p.SelectedIndex()))
		}
	}
	return boxStyle.Width(paletteWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) renderItem(it palette.Item, selected bool) string {
	label := "  " + it.Label
	style := lipgloss.NewStyle()
	if selected {
		label = "▶ " + it.Label
		style = selectedStyle
	}
	gap := paletteWidth - 2 - lipgloss.Width(label) - lipgloss.Width(it.Badge)
	if gap < 1 {
		gap = 1
	}
	return style.Render(label) + strings.Repeat(" ", gap) + mutedStyle.Render(it.Badge)
}

// renderFooter renders the status or edit line above the key help
func (m Model) renderFooter() string {
	var top string
	switch {
	case m.mode == ModeEdit:
		n := m.ed.Graph().Node(m.selected)
		label := ""
		if n != nil {
			label = n.Label
		}
		top = fmt.Sprintf("%s %s", titleStyle.Render(label), m.edit.View())
	case m.status != "":
		top = statusStyle.Render(m.status)
	default:
		s := m.ed.Viewport().State()
		top = mutedStyle.Render(fmt.Sprintf("%d nodes · %d wires · %.0f%%",
			m.ed.Graph().NodeCount(), m.ed.Graph().ConnectionCount(), s.Scale*100))
	}

	var keys string
	switch m.mode {
	case ModePalette:
		keys = m.help.View(promptKeys{keys: m.keys, list: true})
	case ModeEdit:
		keys = m.help.View(promptKeys{keys: m.keys})
	default:
		keys = m.help.View(m.keys)
	}
	return top + "\n" + keys
}
