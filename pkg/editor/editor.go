// Package editor ties the node graph, viewport, palette and node factory into
// one explicit editor state with a single dispatch point per input event.
//
// The editor is synchronous and not safe for concurrent use; hosts serialise
// access. Input handlers never return errors: invalid drops are discarded and
// re-targeting an input replaces its wire.
package editor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/gesture"
	"github.com/recera/nodeflow/pkg/graph"
	"github.com/recera/nodeflow/pkg/nodes"
	"github.com/recera/nodeflow/pkg/palette"
	"github.com/recera/nodeflow/pkg/viewport"
)

var ErrNotValueNode = errors.New("not a value node")

// Editor is the whole editor state
type Editor struct {
	opts    Options
	log     *zap.Logger
	graph   *graph.Graph
	view    *viewport.Viewport
	factory *nodes.Factory
	palette *palette.Palette
	gesture gesture.Gesture
}

// New creates an empty editor
func New(opts *Options) *Editor {
	o := opts.withDefaults()
	g := graph.New(graph.WithBend(o.Bend))
	f := nodes.NewFactory(g)
	return &Editor{
		opts:    o,
		log:     o.Logger,
		graph:   g,
		view:    viewport.New(&o.Viewport),
		factory: f,
		palette: palette.New(palette.DefaultCatalog(f), o.Stagger, f),
		gesture: gesture.Idle{},
	}
}

func (e *Editor) Options() Options             { return e.opts }
func (e *Editor) Graph() *graph.Graph          { return e.graph }
func (e *Editor) Viewport() *viewport.Viewport { return e.view }
func (e *Editor) Palette() *palette.Palette    { return e.palette }
func (e *Editor) Factory() *nodes.Factory      { return e.factory }
func (e *Editor) Gesture() gesture.Gesture     { return e.gesture }
func (e *Editor) Logger() *zap.Logger          { return e.log }

// Restyle applies the wire bend and spawn stagger of o to a running editor.
// Existing wires are rerouted. Zero fields fall back to the defaults.
func (e *Editor) Restyle(o *Options) {
	d := o.withDefaults()
	e.opts.Bend, e.opts.Stagger = d.Bend, d.Stagger
	e.graph.SetBend(d.Bend)
	e.palette.SetStagger(d.Stagger)
}

// Resize records the container size
func (e *Editor) Resize(width, height float64) {
	e.view.Resize(width, height)
}

// Cursor is the CSS cursor for the editor container
func (e *Editor) Cursor() string {
	if _, ok := e.gesture.(gesture.Panning); ok {
		return "grabbing"
	}
	return ""
}

// ProvisionalWire returns the path of the wire being dragged, if any
func (e *Editor) ProvisionalWire() (geom.Cubic, bool) {
	if w, ok := e.gesture.(gesture.DraggingWire); ok {
		return w.Path, true
	}
	return geom.Cubic{}, false
}

// DraggedNode returns the node being dragged, if any
func (e *Editor) DraggedNode() (graph.NodeID, bool) {
	if d, ok := e.gesture.(gesture.DraggingNode); ok {
		return d.Node, true
	}
	return 0, false
}

func (e *Editor) setGesture(g gesture.Gesture) {
	if e.log.Core().Enabled(zap.DebugLevel) {
		e.log.Debug("Gesture transition",
			zap.Stringer("from", e.gesture),
			zap.Stringer("to", g))
	}
	e.gesture = g
}

// HandleWheel zooms anchored at the wheel position
func (e *Editor) HandleWheel(ev gesture.WheelEvent) bool {
	return e.view.ZoomAt(ev.Pos, ev.DeltaY)
}

// HandleKey handles keyboard input. Escape closes an open palette.
func (e *Editor) HandleKey(ev gesture.KeyEvent) bool {
	if ev.Key == gesture.KeyEscape && e.palette.IsOpen() {
		return e.ClosePalette(palette.CancelKey)
	}
	return false
}

// Spawn adds a node of kind k at a content position, bypassing the palette
func (e *Editor) Spawn(k graph.Kind, pos geom.Point) (*graph.Node, error) {
	n, err := e.factory.Spawn(k, pos)
	if err != nil {
		return nil, err
	}
	e.log.Debug("Spawned node", zap.String("label", n.Label), zap.Stringer("kind", n.Kind))
	return n, nil
}

// OpenPalette shows the palette with an empty query
func (e *Editor) OpenPalette() {
	e.palette.Open()
}

// ClosePalette hides the palette
func (e *Editor) ClosePalette(reason palette.CloseReason) bool {
	if !e.palette.Close(reason) {
		return false
	}
	e.log.Debug("Palette closed", zap.Stringer("reason", reason))
	return true
}

// SetPaletteQuery refilters the palette list
func (e *Editor) SetPaletteQuery(q string) {
	e.palette.SetQuery(q)
}

// MovePaletteSelection steps the highlighted palette item
func (e *Editor) MovePaletteSelection(delta int) {
	e.palette.Move(delta)
}

// ActivatePaletteItem spawns a catalog item near the viewport center
func (e *Editor) ActivatePaletteItem(id string) (*graph.Node, error) {
	n, err := e.palette.Activate(id, e.view.ContentCenter())
	if err != nil {
		return nil, err
	}
	e.log.Debug("Spawned node", zap.String("item", id), zap.String("label", n.Label))
	return n, nil
}

// ActivateSelectedPaletteItem spawns the highlighted palette item
func (e *Editor) ActivateSelectedPaletteItem() (*graph.Node, error) {
	it, ok := e.palette.Selected()
	if !ok {
		return nil, fmt.Errorf("editor: %w", palette.ErrUnknownItem)
	}
	return e.ActivatePaletteItem(it.ID)
}

func (e *Editor) valueNode(id graph.NodeID) (*nodes.ValueData, error) {
	n := e.graph.Node(id)
	if n == nil {
		return nil, fmt.Errorf("editor: node %d: %w", id, graph.ErrUnknownNode)
	}
	v := nodes.Value(n)
	if v == nil {
		return nil, fmt.Errorf("editor: node %s: %w", n.Label, ErrNotValueNode)
	}
	return v, nil
}

// SetValueType switches the type selector of a value node
func (e *Editor) SetValueType(id graph.NodeID, t nodes.ValueType) error {
	v, err := e.valueNode(id)
	if err != nil {
		return err
	}
	return v.SetType(t)
}

// SetValueText sets the free-text widget of a value node
func (e *Editor) SetValueText(id graph.NodeID, text string) error {
	v, err := e.valueNode(id)
	if err != nil {
		return err
	}
	v.Text = text
	return nil
}

// ToggleValue flips the boolean widget of a value node
func (e *Editor) ToggleValue(id graph.NodeID) error {
	v, err := e.valueNode(id)
	if err != nil {
		return err
	}
	v.Bool = !v.Bool
	return nil
}
