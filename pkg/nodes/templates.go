// Package nodes defines the spawnable node kinds, their port layouts and the
// factory that registers them into a graph.
package nodes

import (
	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/graph"
)

// Layout in content units. Port centers sit on the node's left edge for
// inputs and right edge for outputs, vertically centered in their row.
const (
	Width        = 176
	HeaderHeight = 28
	RowHeight    = 24
	ConfigHeight = 56 // type selector + widget on value nodes
	BodyPadding  = 8
)

// Row is one labelled port line in a node body
type Row struct {
	Dir  graph.Direction
	Name string
}

// Template describes a node kind
type Template struct {
	Kind   graph.Kind
	Prefix string // label prefix, e.g. "V"
	Title  string
	Config bool // has the value configuration block above the rows
	Rows   []Row
}

var (
	ValueTemplate = Template{
		Kind:   graph.KindValue,
		Prefix: "V",
		Title:  "Value",
		Config: true,
		Rows:   []Row{{graph.Output, "value"}},
	}
	AddTemplate = Template{
		Kind:   graph.KindAdd,
		Prefix: "A",
		Title:  "Add",
		Rows:   []Row{{graph.Input, "a"}, {graph.Input, "b"}, {graph.Output, "sum"}},
	}
	DisplayTemplate = Template{
		Kind:   graph.KindDisplay,
		Prefix: "D",
		Title:  "Display",
		Rows:   []Row{{graph.Input, "value"}},
	}
)

// TemplateFor returns the template of a kind
func TemplateFor(k graph.Kind) (Template, bool) {
	switch k {
	case graph.KindValue:
		return ValueTemplate, true
	case graph.KindAdd:
		return AddTemplate, true
	case graph.KindDisplay:
		return DisplayTemplate, true
	}
	return Template{}, false
}

// BodyTop is the y offset of the first port row
func (t Template) BodyTop() float64 {
	top := float64(HeaderHeight)
	if t.Config {
		top += ConfigHeight
	}
	return top
}

// Size returns the node size in content units
func (t Template) Size() geom.Point {
	return geom.Pt(Width, t.BodyTop()+float64(len(t.Rows))*RowHeight+BodyPadding)
}

// Ports lays the rows out as port specs
func (t Template) Ports() []graph.PortSpec {
	specs := make([]graph.PortSpec, 0, len(t.Rows))
	top := t.BodyTop()
	for i, r := range t.Rows {
		x := 0.0
		if r.Dir == graph.Output {
			x = Width
		}
		specs = append(specs, graph.PortSpec{
			Dir:    r.Dir,
			Name:   r.Name,
			Offset: geom.Pt(x, top+float64(i)*RowHeight+RowHeight/2),
		})
	}
	return specs
}

// Spec builds the graph.NodeSpec for a node of this template
func (t Template) Spec(label string, pos geom.Point, data graph.NodeData) graph.NodeSpec {
	return graph.NodeSpec{
		Label:  label,
		Kind:   t.Kind,
		Title:  t.Title,
		Pos:    pos,
		Size:   t.Size(),
		Header: HeaderHeight,
		Ports:  t.Ports(),
		Data:   data,
	}
}
