package gesture

import "github.com/recera/nodeflow/pkg/geom"

// PointerType is the phase of a pointer event
type PointerType uint8

const (
	PointerDown PointerType = iota
	PointerMove
	PointerUp
	PointerCancel
	PointerDouble // double activation, e.g. dblclick
)

var pointerTypeNames = [...]string{"down", "move", "up", "cancel", "double"}

func (t PointerType) String() string {
	if int(t) < len(pointerTypeNames) {
		return pointerTypeNames[t]
	}
	return "unknown"
}

// ParsePointerType maps a name back to its type
func ParsePointerType(s string) (PointerType, bool) {
	for i, n := range pointerTypeNames {
		if n == s {
			return PointerType(i), true
		}
	}
	return 0, false
}

// Button numbers follow the DOM: 0 primary, 1 middle, 2 secondary
type Button uint8

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonMiddle:
		return "middle"
	case ButtonSecondary:
		return "secondary"
	}
	return "unknown"
}

// PointerEvent is a pointer sample in container-relative screen coordinates
type PointerEvent struct {
	Type      PointerType
	PointerID int
	Button    Button
	Pos       geom.Point
}

// WheelEvent is one wheel step at a screen position
type WheelEvent struct {
	Pos    geom.Point
	DeltaY float64
}

// KeyEscape closes the palette
const KeyEscape = "Escape"

// KeyEvent is a key press, named as KeyboardEvent.key
type KeyEvent struct {
	Key string
}
