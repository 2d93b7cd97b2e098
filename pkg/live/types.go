package live

import (
	"fmt"

	"github.com/recera/nodeflow/pkg/gesture"
)

// MessageType is the first byte of every binary frame
type MessageType uint8

const (
	FramePatches MessageType = 0x00
	FrameEvent   MessageType = 0x01
	FrameControl MessageType = 0x02
)

// EventType is the kind of a client event
type EventType uint8

const (
	EventPointer EventType = 0x01
	EventWheel   EventType = 0x02
	EventKey     EventType = 0x03
	EventResize  EventType = 0x04
	EventControl EventType = 0x05 // UI control addressed by a data-input target
)

var eventTypeNames = map[EventType]string{
	EventPointer: "pointer",
	EventWheel:   "wheel",
	EventKey:     "key",
	EventResize:  "resize",
	EventControl: "control",
}

func (t EventType) String() string {
	if n, ok := eventTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// ParseEventType maps a JSON type name to its EventType
func ParseEventType(s string) (EventType, bool) {
	for t, n := range eventTypeNames {
		if n == s {
			return t, true
		}
	}
	return 0, false
}

// Event is a client event. X and Y are container-relative screen
// coordinates, or the container size for resize events. Key events carry the
// key name in Value.
type Event struct {
	Type      EventType
	Phase     gesture.PointerType
	PointerID uint32
	Button    gesture.Button
	X         float64
	Y         float64
	DeltaY    float64
	Target    string
	Value     string
}

// jsonEvent is the text frame form of Event
type jsonEvent struct {
	Type      string  `json:"type"`
	Phase     string  `json:"phase,omitempty"`
	PointerID uint32  `json:"pointerId,omitempty"`
	Button    uint8   `json:"button,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	DeltaY    float64 `json:"deltaY,omitempty"`
	Key       string  `json:"key,omitempty"`
	Target    string  `json:"target,omitempty"`
	Value     string  `json:"value,omitempty"`
}
