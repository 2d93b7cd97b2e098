package nodes

import (
	"fmt"
	"strconv"

	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/graph"
)

// Factory spawns nodes into a graph. Labels share one sequence across all
// kinds: V1, D2, A3, ...
type Factory struct {
	g   *graph.Graph
	seq int
}

// NewFactory returns a factory registering into g
func NewFactory(g *graph.Graph) *Factory {
	return &Factory{g: g}
}

// Seq returns the current value of the label sequence
func (f *Factory) Seq() int { return f.seq }

// Advance skips one value of the label sequence
func (f *Factory) Advance() { f.seq++ }

func (f *Factory) spawn(t Template, pos geom.Point, data graph.NodeData) *graph.Node {
	f.seq++
	return f.g.AddNode(t.Spec(t.Prefix+strconv.Itoa(f.seq), pos, data))
}

// SpawnValue adds a value node with the given type selected
func (f *Factory) SpawnValue(pos geom.Point, t ValueType) (*graph.Node, error) {
	if _, err := ParseValueType(string(t)); err != nil {
		return nil, err
	}
	return f.spawn(ValueTemplate, pos, &ValueData{Type: t}), nil
}

// SpawnAdd adds an add node
func (f *Factory) SpawnAdd(pos geom.Point) *graph.Node {
	return f.spawn(AddTemplate, pos, nil)
}

// SpawnDisplay adds a display node
func (f *Factory) SpawnDisplay(pos geom.Point) *graph.Node {
	return f.spawn(DisplayTemplate, pos, nil)
}

// Spawn adds a node of kind k. Value nodes start as strings.
func (f *Factory) Spawn(k graph.Kind, pos geom.Point) (*graph.Node, error) {
	switch k {
	case graph.KindValue:
		return f.SpawnValue(pos, TypeString)
	case graph.KindAdd:
		return f.SpawnAdd(pos), nil
	case graph.KindDisplay:
		return f.SpawnDisplay(pos), nil
	}
	return nil, fmt.Errorf("spawn: unknown node kind %v", k)
}

// Value returns the value payload of a node, or nil for other kinds
func Value(n *graph.Node) *ValueData {
	if n == nil {
		return nil
	}
	v, _ := n.Data.(*ValueData)
	return v
}
