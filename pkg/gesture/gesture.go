// Package gesture defines the input events the editor consumes and the
// gesture states it moves through. A gesture is exactly one of Idle,
// Panning, DraggingNode or DraggingWire.
package gesture

import (
	"fmt"

	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/graph"
)

// Gesture is the sealed set of gesture states
type Gesture interface {
	gesture()
	String() string
}

// Idle means no pointer is captured
type Idle struct{}

// Panning drags the viewport translation
type Panning struct {
	PointerID      int
	Start          geom.Point // screen
	StartTranslate geom.Point
}

// DraggingNode moves one node by its header
type DraggingNode struct {
	PointerID int
	Node      graph.NodeID
	Start     geom.Point // screen
	Origin    geom.Point // node position at start, content
}

// DraggingWire extends a provisional wire from an output port
type DraggingWire struct {
	PointerID int
	From      graph.PortID
	Cursor    geom.Point // content
	Path      geom.Cubic
}

func (Idle) gesture()         {}
func (Panning) gesture()      {}
func (DraggingNode) gesture() {}
func (DraggingWire) gesture() {}

func (Idle) String() string { return "idle" }

func (g Panning) String() string { return fmt.Sprintf("panning(pointer=%d)", g.PointerID) }

func (g DraggingNode) String() string {
	return fmt.Sprintf("dragging-node(pointer=%d node=%d)", g.PointerID, g.Node)
}

func (g DraggingWire) String() string {
	return fmt.Sprintf("dragging-wire(pointer=%d from=%d)", g.PointerID, g.From)
}

// Pointer returns the captured pointer id, or false when idle
func Pointer(g Gesture) (int, bool) {
	switch g := g.(type) {
	case Panning:
		return g.PointerID, true
	case DraggingNode:
		return g.PointerID, true
	case DraggingWire:
		return g.PointerID, true
	}
	return 0, false
}
