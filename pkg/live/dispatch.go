package live

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/recera/nodeflow/pkg/editor"
	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/gesture"
	"github.com/recera/nodeflow/pkg/graph"
	"github.com/recera/nodeflow/pkg/nodes"
	"github.com/recera/nodeflow/pkg/palette"
)

var ErrUnknownTarget = errors.New("unknown control target")

// Apply feeds one client event into the editor. It reports whether the scene
// may have changed. Errors only come from control events naming something
// that does not exist.
func Apply(ed *editor.Editor, evt *Event) (bool, error) {
	pos := geom.Pt(evt.X, evt.Y)
	switch evt.Type {
	case EventPointer:
		return ed.HandlePointer(gesture.PointerEvent{
			Type:      evt.Phase,
			PointerID: int(evt.PointerID),
			Button:    evt.Button,
			Pos:       pos,
		}), nil
	case EventWheel:
		return ed.HandleWheel(gesture.WheelEvent{Pos: pos, DeltaY: evt.DeltaY}), nil
	case EventKey:
		return ed.HandleKey(gesture.KeyEvent{Key: evt.Value}), nil
	case EventResize:
		ed.Resize(evt.X, evt.Y)
		return false, nil
	case EventControl:
		return true, control(ed, evt.Target, evt.Value)
	}
	return false, fmt.Errorf("event type %v: %w", evt.Type, ErrMalformedFrame)
}

// control handles the data-input targets rendered into the scene
func control(ed *editor.Editor, target, value string) error {
	switch target {
	case "palette:open":
		ed.OpenPalette()
		return nil
	case "palette:close":
		ed.ClosePalette(palette.CloseButton)
		return nil
	case "palette:outside":
		ed.ClosePalette(palette.ClickOutside)
		return nil
	case "palette:query":
		ed.SetPaletteQuery(value)
		return nil
	case "palette:move":
		delta, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("palette move %q: %w", value, err)
		}
		ed.MovePaletteSelection(delta)
		return nil
	case "palette:select":
		_, err := ed.ActivateSelectedPaletteItem()
		return err
	}

	if id, ok := strings.CutPrefix(target, "palette:item:"); ok {
		_, err := ed.ActivatePaletteItem(id)
		return err
	}

	if rest, ok := strings.CutPrefix(target, "value:"); ok {
		field, label, _ := strings.Cut(rest, ":")
		n := ed.Graph().NodeByLabel(label)
		if n == nil {
			return fmt.Errorf("node %q: %w", label, graph.ErrUnknownNode)
		}
		switch field {
		case "type":
			t, err := nodes.ParseValueType(value)
			if err != nil {
				return err
			}
			return ed.SetValueType(n.ID, t)
		case "text":
			return ed.SetValueText(n.ID, value)
		case "toggle":
			return ed.ToggleValue(n.ID)
		}
	}
	return fmt.Errorf("%q: %w", target, ErrUnknownTarget)
}
