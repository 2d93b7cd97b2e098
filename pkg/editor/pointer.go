package editor

import (
	"go.uber.org/zap"

	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/gesture"
	"github.com/recera/nodeflow/pkg/graph"
	"github.com/recera/nodeflow/pkg/palette"
)

// HandlePointer is the single dispatch point for pointer input. It reports
// whether anything visible changed.
func (e *Editor) HandlePointer(ev gesture.PointerEvent) bool {
	switch ev.Type {
	case gesture.PointerDown:
		return e.pointerDown(ev)
	case gesture.PointerMove:
		return e.pointerMove(ev)
	case gesture.PointerUp, gesture.PointerCancel:
		return e.pointerUp(ev)
	case gesture.PointerDouble:
		return e.pointerDouble(ev)
	}
	return false
}

func (e *Editor) captured(ev gesture.PointerEvent) bool {
	id, ok := gesture.Pointer(e.gesture)
	return ok && id == ev.PointerID
}

func (e *Editor) pointerDown(ev gesture.PointerEvent) bool {
	if e.palette.IsOpen() {
		return e.ClosePalette(palette.ClickOutside)
	}
	if _, idle := e.gesture.(gesture.Idle); !idle {
		return false
	}

	switch ev.Button {
	case gesture.ButtonMiddle:
		e.setGesture(gesture.Panning{
			PointerID:      ev.PointerID,
			Start:          ev.Pos,
			StartTranslate: e.view.State().Translate(),
		})
		return true

	case gesture.ButtonPrimary:
		at := e.view.ScreenToContent(ev.Pos)
		if p := e.graph.PortAt(at, e.opts.PortRadius); p != nil {
			if p.Dir != graph.Output {
				return false
			}
			e.setGesture(gesture.DraggingWire{
				PointerID: ev.PointerID,
				From:      p.ID,
				Cursor:    at,
				Path:      geom.Connector(e.graph.PortCenter(p.ID), at, e.graph.Bend()),
			})
			return true
		}
		if n := e.graph.HeaderAt(at); n != nil {
			e.setGesture(gesture.DraggingNode{
				PointerID: ev.PointerID,
				Node:      n.ID,
				Start:     ev.Pos,
				Origin:    n.Pos,
			})
			return true
		}
	}
	return false
}

func (e *Editor) pointerMove(ev gesture.PointerEvent) bool {
	if !e.captured(ev) {
		return false
	}
	switch g := e.gesture.(type) {
	case gesture.Panning:
		e.view.SetTranslate(g.StartTranslate.Add(ev.Pos.Sub(g.Start)))
		return true

	case gesture.DraggingNode:
		delta := ev.Pos.Sub(g.Start).Div(e.view.Scale())
		if _, err := e.graph.MoveNode(g.Node, g.Origin.Add(delta)); err != nil {
			e.log.Warn("Dragged node vanished", zap.Error(err))
			e.setGesture(gesture.Idle{})
		}
		return true

	case gesture.DraggingWire:
		g.Cursor = e.view.ScreenToContent(ev.Pos)
		g.Path = geom.Connector(e.graph.PortCenter(g.From), g.Cursor, e.graph.Bend())
		e.gesture = g
		return true
	}
	return false
}

func (e *Editor) pointerUp(ev gesture.PointerEvent) bool {
	if !e.captured(ev) {
		return false
	}
	if w, ok := e.gesture.(gesture.DraggingWire); ok {
		e.dropWire(w, ev.Pos)
	}
	e.setGesture(gesture.Idle{})
	return true
}

// dropWire resolves the drop target of a wire drag released at a screen point
// and commits the connection when it is a valid, distinct input.
func (e *Editor) dropWire(w gesture.DraggingWire, screen geom.Point) {
	target := e.DropTarget(screen)
	if target == nil || target.ID == w.From {
		e.log.Debug("Wire discarded", zap.String("from", e.graph.PortKey(w.From)))
		return
	}
	c, err := e.graph.AddConnection(w.From, target.ID)
	if err != nil {
		e.log.Debug("Wire rejected", zap.Error(err))
		return
	}
	e.log.Debug("Wire connected",
		zap.String("from", e.graph.PortKey(c.Source)),
		zap.String("to", e.graph.PortKey(c.Target)))
}

// DropTarget returns the input port a wire released at the screen point would
// attach to: an input directly under the pointer, otherwise the nearest input
// within DropRadius screen pixels.
func (e *Editor) DropTarget(screen geom.Point) *graph.Port {
	at := e.view.ScreenToContent(screen)
	if p := e.graph.PortAt(at, e.opts.PortRadius); p != nil && p.Dir == graph.Input {
		return p
	}
	p, _ := e.graph.NearestInput(at, e.opts.DropRadius/e.view.Scale())
	return p
}

func (e *Editor) pointerDouble(ev gesture.PointerEvent) bool {
	if _, idle := e.gesture.(gesture.Idle); !idle || e.palette.IsOpen() {
		return false
	}
	p := e.graph.PortAt(e.view.ScreenToContent(ev.Pos), e.opts.PortRadius)
	if p == nil || p.Dir != graph.Input {
		return false
	}
	c, ok := e.graph.Disconnect(p.ID)
	if ok {
		e.log.Debug("Wire disconnected", zap.Stringer("conn", c))
	}
	return ok
}
