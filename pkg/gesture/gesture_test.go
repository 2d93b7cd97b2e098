package gesture

import "testing"

func TestPointer(t *testing.T) {
	tests := []struct {
		name string
		g    Gesture
		id   int
		ok   bool
	}{
		{"idle", Idle{}, 0, false},
		{"panning", Panning{PointerID: 3}, 3, true},
		{"node", DraggingNode{PointerID: 4}, 4, true},
		{"wire", DraggingWire{PointerID: 5}, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Pointer(tt.g)
			if id != tt.id || ok != tt.ok {
				t.Errorf("Pointer(%v) = %d, %v; want %d, %v", tt.g, id, ok, tt.id, tt.ok)
			}
		})
	}
}

func TestParsePointerType(t *testing.T) {
	for _, pt := range []PointerType{PointerDown, PointerMove, PointerUp, PointerCancel, PointerDouble} {
		got, ok := ParsePointerType(pt.String())
		if !ok || got != pt {
			t.Errorf("ParsePointerType(%q) = %v, %v", pt.String(), got, ok)
		}
	}
	if _, ok := ParsePointerType("hover"); ok {
		t.Error("unexpected match for hover")
	}
}
