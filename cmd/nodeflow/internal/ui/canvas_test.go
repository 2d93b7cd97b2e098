package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodeflow/pkg/editor"
	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/gesture"
	"github.com/recera/nodeflow/pkg/graph"
	"github.com/recera/nodeflow/pkg/nodes"
)

func TestCellMapping(t *testing.T) {
	tests := []struct {
		p        geom.Point
		col, row int
	}{
		{geom.Pt(0, 0), 0, 0},
		{geom.Pt(7.9, 15.9), 0, 0},
		{geom.Pt(8, 16), 1, 1},
		{geom.Pt(180, 104), 22, 6},
		{geom.Pt(-1, -1), -1, -1},
	}
	for _, tt := range tests {
		col, row := CellAt(tt.p)
		assert.Equal(t, tt.col, col, "col of %v", tt.p)
		assert.Equal(t, tt.row, row, "row of %v", tt.p)
	}
	assert.Equal(t, geom.Pt(180, 104), CellCenter(22, 6))
}

func TestCanvas_ValueNode(t *testing.T) {
	ed := editor.New(nil)
	_, err := ed.Factory().SpawnValue(geom.Pt(0, 0), nodes.TypeString)
	require.NoError(t, err)

	c := NewCanvas(40, 10)
	c.Draw(ed, 0)
	lines := strings.Split(c.Plain(), "\n")
	require.Len(t, lines, 10)

	assert.True(t, strings.HasPrefix(lines[0], "╭─ V1 Value ─"), lines[0])
	assert.Equal(t, '╮', []rune(lines[0])[21])
	assert.Contains(t, lines[3], "String = …")
	assert.Contains(t, lines[6], "value│●")
	assert.True(t, strings.HasPrefix(lines[7], "╰"), lines[7])
	assert.Equal(t, strings.Repeat(" ", 40), lines[9])
}

func TestCanvas_ClipsOffscreen(t *testing.T) {
	ed := editor.New(nil)
	ed.Factory().SpawnAdd(geom.Pt(-100, -100))
	ed.Factory().SpawnDisplay(geom.Pt(1000, 1000))

	c := NewCanvas(5, 3)
	assert.NotPanics(t, func() { c.Draw(ed, 0) })
	assert.Len(t, []rune(c.Plain()), 5*3+2)
}

func TestCanvas_Wires(t *testing.T) {
	ed := editor.New(nil)
	v, err := ed.Factory().SpawnValue(geom.Pt(4, 8), nodes.TypeInt)
	require.NoError(t, err)
	d := ed.Factory().SpawnDisplay(geom.Pt(300, 0))
	out := ed.Graph().PortByName(v.ID, graph.Output, "value")
	in := ed.Graph().PortByName(d.ID, graph.Input, "value")

	// drag from the output; the provisional wire is drawn on top
	ed.HandlePointer(gesture.PointerEvent{Type: gesture.PointerDown, PointerID: 1, Pos: ed.Graph().PortCenter(out.ID)})
	ed.HandlePointer(gesture.PointerEvent{Type: gesture.PointerMove, PointerID: 1, Pos: geom.Pt(250, 200)})
	c := NewCanvas(60, 20)
	c.Draw(ed, 0)
	assert.Contains(t, c.Plain(), "•")
	assert.NotContains(t, c.Plain(), "·")

	ed.HandlePointer(gesture.PointerEvent{Type: gesture.PointerUp, PointerID: 1, Pos: ed.Graph().PortCenter(in.ID)})
	require.Equal(t, 1, ed.Graph().ConnectionCount())
	c = NewCanvas(60, 20)
	c.Draw(ed, 0)
	assert.Contains(t, c.Plain(), "·")
	assert.NotContains(t, c.Plain(), "•")
}

func TestCanvas_RenderKeepsText(t *testing.T) {
	ed := editor.New(nil)
	ed.Factory().SpawnDisplay(geom.Pt(0, 0))
	c := NewCanvas(30, 6)
	c.Draw(ed, 0)
	assert.Contains(t, c.Render(), "D1 Display")
}
