package ui

import (
	"math"
	"strings"

	"github.com/recera/nodeflow/pkg/editor"
	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/graph"
	"github.com/recera/nodeflow/pkg/nodes"
)

// A terminal cell stands for a CellWidth x CellHeight block of screen pixels
const (
	CellWidth  = 8
	CellHeight = 16
)

// wireSamples is the number of segments a wire is rasterised with
const wireSamples = 96

type class uint8

const (
	clsBlank class = iota
	clsWire
	clsProvisional
	clsNode
	clsBorder
	clsTitle
	clsPort
	clsDragging
	clsSelected
)

type cell struct {
	r rune
	c class
}

// Canvas is a grid of styled runes the editor scene is rasterised into
type Canvas struct {
	w, h  int
	cells []cell
}

// NewCanvas creates a blank canvas of w columns and h rows
func NewCanvas(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &Canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
	return c
}

// CellAt maps a screen point to the cell containing it
func CellAt(p geom.Point) (col, row int) {
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

// CellCenter maps a cell to the screen point at its middle
func CellCenter(col, row int) geom.Point {
	return geom.Pt((float64(col)+0.5)*CellWidth, (float64(row)+0.5)*CellHeight)
}

func (c *Canvas) set(x, y int, r rune, cl class) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y*c.w+x] = cell{r: r, c: cl}
}

func (c *Canvas) at(x, y int) cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return cell{}
	}
	return c.cells[y*c.w+x]
}

// text writes s from column x, clipped to [x, maxX]
func (c *Canvas) text(x, y, maxX int, s string, cl class) {
	for _, r := range s {
		if x > maxX {
			return
		}
		c.set(x, y, r, cl)
		x++
	}
}

// Draw rasterises the editor: wires first, then nodes in paint order, then
// the provisional wire on top.
func (c *Canvas) Draw(ed *editor.Editor, selected graph.NodeID) {
	g := ed.Graph()
	for _, conn := range g.Connections() {
		c.curve(ed, conn.Path, '·', clsWire)
	}

	dragged, dragging := ed.DraggedNode()
	for _, n := range g.Nodes() {
		border := clsBorder
		switch {
		case dragging && n.ID == dragged:
			border = clsDragging
		case n.ID == selected:
			border = clsSelected
		}
		c.node(ed, n, border)
	}

	if path, ok := ed.ProvisionalWire(); ok {
		c.curve(ed, path, '•', clsProvisional)
	}
}

func (c *Canvas) curve(ed *editor.Editor, path geom.Cubic, r rune, cl class) {
	view := ed.Viewport()
	for _, p := range path.Sample(wireSamples) {
		x, y := CellAt(view.ContentToScreen(p))
		c.set(x, y, r, cl)
	}
}

func (c *Canvas) node(ed *editor.Editor, n *graph.Node, border class) {
	view := ed.Viewport()
	x0, y0 := CellAt(view.ContentToScreen(n.Pos))
	far := view.ContentToScreen(n.Pos.Add(n.Size))
	x1 := int(math.Ceil(far.X/CellWidth)) - 1
	y1 := int(math.Ceil(far.Y/CellHeight)) - 1
	if x1 < x0+2 {
		x1 = x0 + 2
	}
	if y1 < y0+1 {
		y1 = y0 + 1
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.set(x, y, ' ', clsNode)
		}
	}
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '─', border)
		c.set(x, y1, '─', border)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '│', border)
		c.set(x1, y, '│', border)
	}
	c.set(x0, y0, '╭', border)
	c.set(x1, y0, '╮', border)
	c.set(x0, y1, '╰', border)
	c.set(x1, y1, '╯', border)
	c.text(x0+2, y0, x1-2, " "+n.Label+" "+n.Title+" ", clsTitle)

	if v := nodes.Value(n); v != nil {
		_, row := CellAt(view.ContentToScreen(n.Pos.Add(geom.Pt(0, nodes.HeaderHeight+nodes.ConfigHeight/2))))
		if row > y0 && row < y1 {
			shown := v.Display()
			if shown == "" {
				shown = "…"
			}
			c.text(x0+2, row, x1-2, v.Type.Label()+" = "+shown, clsNode)
		}
	}

	g := ed.Graph()
	for _, id := range n.Ports {
		p := g.Port(id)
		px, py := CellAt(view.ContentToScreen(g.PortCenter(id)))
		c.set(px, py, '●', clsPort)
		if py <= y0 || py >= y1 {
			continue
		}
		if p.Dir == graph.Input {
			c.text(px+2, py, x1-2, p.Name, clsNode)
		} else {
			c.text(px-1-len([]rune(p.Name)), py, px-2, p.Name, clsNode)
		}
	}
}

// Plain returns the canvas without styling, one line per row
func (c *Canvas) Plain() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.w; x++ {
			b.WriteRune(c.at(x, y).r)
		}
	}
	return b.String()
}

// Render returns the canvas with each run of same-class cells styled
func (c *Canvas) Render() string {
	var b strings.Builder
	var run []rune
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		cur := clsBlank
		flush := func() {
			if len(run) == 0 {
				return
			}
			if st, ok := cellStyles[cur]; ok {
				b.WriteString(st.Render(string(run)))
			} else {
				b.WriteString(string(run))
			}
			run = run[:0]
		}
		for x := 0; x < c.w; x++ {
			cl := c.at(x, y)
			if cl.c != cur {
				flush()
				cur = cl.c
			}
			run = append(run, cl.r)
		}
		flush()
	}
	return b.String()
}
