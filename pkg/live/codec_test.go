package live

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodeflow/pkg/editor"
	"github.com/recera/nodeflow/pkg/gesture"
	"github.com/recera/nodeflow/pkg/scene"
)

func TestEventCodec(t *testing.T) {
	evt := Event{
		Type:      EventPointer,
		Phase:     gesture.PointerMove,
		PointerID: 300,
		Button:    gesture.ButtonMiddle,
		X:         12.5,
		Y:         -4,
		DeltaY:    0,
		Target:    "palette:item:node:add",
		Value:     "ünïcode",
	}
	got, err := DecodeEvent(EncodeEvent(evt))
	require.NoError(t, err)
	assert.Equal(t, evt, *got)
}

func TestDecodeEvent_Malformed(t *testing.T) {
	full := EncodeEvent(Event{Type: EventWheel, DeltaY: 120, Target: "x"})
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"wrong frame", append([]byte{byte(FrameControl)}, full[1:]...)},
		{"truncated floats", full[:10]},
		{"truncated string", full[:len(full)-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestDecodeEvent_RejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		evt  Event
	}{
		{"nan deltaY", Event{Type: EventWheel, X: 10, Y: 10, DeltaY: math.NaN()}},
		{"inf x", Event{Type: EventWheel, X: math.Inf(1), DeltaY: -100}},
		{"-inf y", Event{Type: EventPointer, Phase: gesture.PointerMove, Y: math.Inf(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent(EncodeEvent(tt.evt))
			assert.ErrorIs(t, err, ErrMalformedFrame)
		})
	}
}

func TestApply_WheelKeepsScaleFinite(t *testing.T) {
	ed := editor.New(nil)
	ed.Resize(800, 600)

	// a frame that slipped past the decoder still cannot corrupt the transform
	changed, err := Apply(ed, &Event{Type: EventWheel, X: 400, Y: 300, DeltaY: math.NaN()})
	require.NoError(t, err)
	assert.False(t, changed)
	_, err = Apply(ed, &Event{Type: EventWheel, X: math.Inf(1), Y: 300, DeltaY: -100})
	require.NoError(t, err)

	st := ed.Viewport().State()
	assert.Equal(t, 1.0, st.Scale)
	assert.Equal(t, 0.0, st.TranslateX)
	assert.Equal(t, 0.0, st.TranslateY)
}

func TestDecodeJSONEvent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Event
	}{
		{
			name: "pointer",
			in:   `{"type":"pointer","phase":"down","pointerId":2,"button":1,"x":10,"y":20}`,
			want: Event{Type: EventPointer, Phase: gesture.PointerDown, PointerID: 2, Button: gesture.ButtonMiddle, X: 10, Y: 20},
		},
		{
			name: "key",
			in:   `{"type":"key","key":"Escape"}`,
			want: Event{Type: EventKey, Value: "Escape"},
		},
		{
			name: "control",
			in:   `{"type":"control","target":"palette:query","value":"int"}`,
			want: Event{Type: EventControl, Target: "palette:query", Value: "int"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeJSONEvent([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}

	for _, bad := range []string{`{`, `{"type":"hover"}`, `{"type":"pointer","phase":"hover"}`, `{"type":"wheel","deltaY":1e400}`} {
		_, err := DecodeJSONEvent([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestPatchCodec(t *testing.T) {
	inserted := scene.TextEl("div", "n", scene.Attrs{"class": "x"}, "hi")
	patches := []scene.Patch{
		{Op: scene.OpSetText, Key: "a", Value: "text"},
		{Op: scene.OpSetAttr, Key: "a", Name: "class", Value: "wire"},
		{Op: scene.OpRemoveAttr, Key: "a", Name: "style"},
		{Op: scene.OpRemove, Key: "b"},
		{Op: scene.OpInsert, Key: "n", Parent: "p", Before: "c", Elem: inserted},
		{Op: scene.OpReplace, Key: "n", Elem: inserted},
	}
	data, err := EncodePatches(7, patches)
	require.NoError(t, err)

	seq, got, err := DecodePatches(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), seq)

	html := `<div data-k="n" class="x">hi</div>`
	assert.Equal(t, []WirePatch{
		{Op: scene.OpSetText, Key: "a", Value: "text"},
		{Op: scene.OpSetAttr, Key: "a", Name: "class", Value: "wire"},
		{Op: scene.OpRemoveAttr, Key: "a", Name: "style"},
		{Op: scene.OpRemove, Key: "b"},
		{Op: scene.OpInsert, Key: "n", Parent: "p", Before: "c", HTML: html},
		{Op: scene.OpReplace, Key: "n", HTML: html},
	}, got)

	_, _, err = DecodePatches(data[:len(data)-3])
	assert.Error(t, err)
}
