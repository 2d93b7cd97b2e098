package graph

import (
	"fmt"

	"github.com/recera/nodeflow/pkg/geom"
)

// NodeID is an arena handle for a node. Zero is never assigned.
type NodeID uint32

// PortID is an arena handle for a port. Zero is never assigned.
type PortID uint32

// ConnID is an arena handle for a connection. Zero is never assigned.
type ConnID uint32

// Kind enumerates the spawnable node kinds
type Kind int

const (
	KindValue   Kind = iota // typed constant
	KindAdd                 // binary add
	KindDisplay             // sink that shows its input
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindAdd:
		return "add"
	case KindDisplay:
		return "display"
	default:
		return "unknown"
	}
}

// Direction is the side of a port
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "out"
	}
	return "in"
}

// NodeData is the kind-specific payload carried by a node
type NodeData interface {
	NodeKind() Kind
}

// Node is a spawned unit on the canvas
type Node struct {
	ID     NodeID
	Label  string // kind prefix + counter, e.g. "V3"
	Kind   Kind
	Title  string
	Pos    geom.Point // top-left corner in content coordinates
	Size   geom.Point
	Header float64 // height of the drag handle strip
	Ports  []PortID
	Data   NodeData
}

// Bounds returns the node rectangle in content coordinates
func (n *Node) Bounds() geom.Rect {
	return geom.RectXYWH(n.Pos.X, n.Pos.Y, n.Size.X, n.Size.Y)
}

// HeaderBounds returns the header strip in content coordinates
func (n *Node) HeaderBounds() geom.Rect {
	return geom.RectXYWH(n.Pos.X, n.Pos.Y, n.Size.X, n.Header)
}

// Port is a directional attachment point on a node
type Port struct {
	ID     PortID
	Node   NodeID
	Dir    Direction
	Name   string
	Offset geom.Point // port center relative to the node origin
}

// Connection is a wire from an output port to an input port
type Connection struct {
	ID     ConnID
	Source PortID
	Target PortID
	Path   geom.Cubic
}

func (c *Connection) String() string {
	return fmt.Sprintf("conn#%d(%d->%d)", c.ID, c.Source, c.Target)
}

// PortSpec describes a port when adding a node
type PortSpec struct {
	Dir    Direction
	Name   string
	Offset geom.Point
}

// NodeSpec describes a node to add to the graph
type NodeSpec struct {
	Label  string
	Kind   Kind
	Title  string
	Pos    geom.Point
	Size   geom.Point
	Header float64
	Ports  []PortSpec
	Data   NodeData
}
