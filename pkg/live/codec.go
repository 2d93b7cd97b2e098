package live

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/gesture"
	"github.com/recera/nodeflow/pkg/scene"
)

var ErrMalformedFrame = errors.New("malformed frame")

// Encoder writes live protocol primitives
type Encoder struct {
	w   io.Writer
	err error
}

// NewEncoder creates a new encoder
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first write error
func (e *Encoder) Err() error { return e.err }

// WriteBytes writes raw bytes
func (e *Encoder) WriteBytes(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

// WriteUvarint writes an unsigned varint
func (e *Encoder) WriteUvarint(v uint64) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	e.WriteBytes(buf[:n])
}

// WriteString writes a length-prefixed string
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.WriteBytes([]byte(s))
}

// WriteFloat64 writes a little-endian IEEE 754 double
func (e *Encoder) WriteFloat64(f float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
	e.WriteBytes(buf[:])
}

// Decoder reads live protocol primitives
type Decoder struct {
	r *bytes.Reader
}

// NewDecoder creates a decoder over a complete frame body
func NewDecoder(data []byte) *Decoder {
	return &Decoder{r: bytes.NewReader(data)}
}

// ReadByte implements io.ByteReader
func (d *Decoder) ReadByte() (byte, error) {
	return d.r.ReadByte()
}

// ReadUvarint reads an unsigned varint
func (d *Decoder) ReadUvarint() (uint64, error) {
	return binary.ReadUvarint(d.r)
}

// ReadString reads a length-prefixed string
func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(d.r.Len()) {
		return "", fmt.Errorf("string of %d bytes: %w", n, ErrMalformedFrame)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadFloat64 reads a little-endian IEEE 754 double
func (d *Decoder) ReadFloat64() (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// EncodeEvent encodes an event frame:
// type, phase, pointer id, button, x, y, deltaY, target, value
func EncodeEvent(evt Event) []byte {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteBytes([]byte{byte(FrameEvent), byte(evt.Type), byte(evt.Phase)})
	enc.WriteUvarint(uint64(evt.PointerID))
	enc.WriteBytes([]byte{byte(evt.Button)})
	enc.WriteFloat64(evt.X)
	enc.WriteFloat64(evt.Y)
	enc.WriteFloat64(evt.DeltaY)
	enc.WriteString(evt.Target)
	enc.WriteString(evt.Value)
	return buf.Bytes()
}

// DecodeEvent decodes a binary event frame
func DecodeEvent(data []byte) (*Event, error) {
	if len(data) < 3 || MessageType(data[0]) != FrameEvent {
		return nil, fmt.Errorf("event: %w", ErrMalformedFrame)
	}
	evt := &Event{
		Type:  EventType(data[1]),
		Phase: gesture.PointerType(data[2]),
	}
	d := NewDecoder(data[3:])

	id, err := d.ReadUvarint()
	if err != nil {
		return nil, fmt.Errorf("event pointer id: %w", err)
	}
	evt.PointerID = uint32(id)

	b, err := d.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("event button: %w", err)
	}
	evt.Button = gesture.Button(b)

	for _, f := range []*float64{&evt.X, &evt.Y, &evt.DeltaY} {
		if *f, err = d.ReadFloat64(); err != nil {
			return nil, fmt.Errorf("event coordinates: %w", err)
		}
	}
	if !geom.Finite(evt.X, evt.Y, evt.DeltaY) {
		return nil, fmt.Errorf("event coordinates not finite: %w", ErrMalformedFrame)
	}
	if evt.Target, err = d.ReadString(); err != nil {
		return nil, fmt.Errorf("event target: %w", err)
	}
	if evt.Value, err = d.ReadString(); err != nil {
		return nil, fmt.Errorf("event value: %w", err)
	}
	return evt, nil
}

// DecodeJSONEvent decodes a text event frame
func DecodeJSONEvent(data []byte) (*Event, error) {
	var j jsonEvent
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("json event: %w", err)
	}
	typ, ok := ParseEventType(j.Type)
	if !ok {
		return nil, fmt.Errorf("json event type %q: %w", j.Type, ErrMalformedFrame)
	}
	evt := &Event{
		Type:      typ,
		PointerID: j.PointerID,
		Button:    gesture.Button(j.Button),
		X:         j.X,
		Y:         j.Y,
		DeltaY:    j.DeltaY,
		Target:    j.Target,
		Value:     j.Value,
	}
	if !geom.Finite(evt.X, evt.Y, evt.DeltaY) {
		return nil, fmt.Errorf("json event coordinates not finite: %w", ErrMalformedFrame)
	}
	if typ == EventPointer {
		if evt.Phase, ok = gesture.ParsePointerType(j.Phase); !ok {
			return nil, fmt.Errorf("json event phase %q: %w", j.Phase, ErrMalformedFrame)
		}
	}
	if typ == EventKey {
		evt.Value = j.Key
	}
	return evt, nil
}

// EncodeControl encodes a control frame: a name followed by string args
func EncodeControl(name string, args ...string) []byte {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteBytes([]byte{byte(FrameControl)})
	enc.WriteString(name)
	for _, a := range args {
		enc.WriteString(a)
	}
	return buf.Bytes()
}

// WirePatch is a patch as it travels: inserted and replacing elements are
// carried as rendered HTML.
type WirePatch struct {
	Op     scene.PatchOp
	Key    string
	Parent string
	Before string
	Name   string
	Value  string
	HTML   string
}

// EncodePatches encodes a patch frame: sequence, count, then per patch the
// opcode and its op-specific fields.
func EncodePatches(seq uint64, patches []scene.Patch) ([]byte, error) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteBytes([]byte{byte(FramePatches)})
	enc.WriteUvarint(seq)
	enc.WriteUvarint(uint64(len(patches)))

	for _, p := range patches {
		enc.WriteBytes([]byte{byte(p.Op)})
		switch p.Op {
		case scene.OpSetText:
			enc.WriteString(p.Key)
			enc.WriteString(p.Value)
		case scene.OpSetAttr:
			enc.WriteString(p.Key)
			enc.WriteString(p.Name)
			enc.WriteString(p.Value)
		case scene.OpRemoveAttr:
			enc.WriteString(p.Key)
			enc.WriteString(p.Name)
		case scene.OpRemove:
			enc.WriteString(p.Key)
		case scene.OpInsert, scene.OpReplace:
			html, err := scene.RenderToString(p.Elem)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", p.Key, err)
			}
			enc.WriteString(p.Key)
			if p.Op == scene.OpInsert {
				enc.WriteString(p.Parent)
				enc.WriteString(p.Before)
			}
			enc.WriteString(html)
		default:
			return nil, fmt.Errorf("encode patch op %d: %w", p.Op, ErrMalformedFrame)
		}
	}
	if err := enc.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodePatches decodes a patch frame
func DecodePatches(data []byte) (uint64, []WirePatch, error) {
	if len(data) < 1 || MessageType(data[0]) != FramePatches {
		return 0, nil, fmt.Errorf("patches: %w", ErrMalformedFrame)
	}
	d := NewDecoder(data[1:])
	seq, err := d.ReadUvarint()
	if err != nil {
		return 0, nil, fmt.Errorf("patches seq: %w", err)
	}
	count, err := d.ReadUvarint()
	if err != nil {
		return 0, nil, fmt.Errorf("patches count: %w", err)
	}

	out := make([]WirePatch, 0, min(count, 1024))
	for i := uint64(0); i < count; i++ {
		op, err := d.ReadByte()
		if err != nil {
			return 0, nil, fmt.Errorf("patch %d: %w", i, err)
		}
		p := WirePatch{Op: scene.PatchOp(op)}
		var fields []*string
		switch p.Op {
		case scene.OpSetText:
			fields = []*string{&p.Key, &p.Value}
		case scene.OpSetAttr:
			fields = []*string{&p.Key, &p.Name, &p.Value}
		case scene.OpRemoveAttr:
			fields = []*string{&p.Key, &p.Name}
		case scene.OpRemove:
			fields = []*string{&p.Key}
		case scene.OpInsert:
			fields = []*string{&p.Key, &p.Parent, &p.Before, &p.HTML}
		case scene.OpReplace:
			fields = []*string{&p.Key, &p.HTML}
		default:
			return 0, nil, fmt.Errorf("patch %d op %d: %w", i, op, ErrMalformedFrame)
		}
		for _, f := range fields {
			if *f, err = d.ReadString(); err != nil {
				return 0, nil, fmt.Errorf("patch %d: %w", i, err)
			}
		}
		out = append(out, p)
	}
	return seq, out, nil
}
