// Package viewport owns the pan/zoom transform of the editor surface and
// converts between screen and content coordinates.
//
// Screen coordinates are pointer positions relative to the editor container's
// top-left corner. Content coordinates are the pan/zoom independent space in
// which node positions are stored.
package viewport

import (
	"fmt"
	"math"

	"github.com/recera/nodeflow/pkg/geom"
)

const (
	DefaultMinScale        = 0.4
	DefaultMaxScale        = 2.5
	DefaultZoomSensitivity = 0.001
)

// Options configures the viewport bounds and wheel response
type Options struct {
	MinScale        float64 // default 0.4
	MaxScale        float64 // default 2.5
	ZoomSensitivity float64 // k in exp(-deltaY*k), default 0.001
}

func (o *Options) withDefaults() Options {
	d := Options{
		MinScale:        DefaultMinScale,
		MaxScale:        DefaultMaxScale,
		ZoomSensitivity: DefaultZoomSensitivity,
	}
	if o == nil {
		return d
	}
	if o.MinScale > 0 {
		d.MinScale = o.MinScale
	}
	if o.MaxScale > 0 {
		d.MaxScale = o.MaxScale
	}
	if o.ZoomSensitivity > 0 {
		d.ZoomSensitivity = o.ZoomSensitivity
	}
	if d.MinScale > d.MaxScale {
		d.MinScale, d.MaxScale = d.MaxScale, d.MinScale
	}
	return d
}

// State is the transform applied to the content layer
type State struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"tx"`
	TranslateY float64 `json:"ty"`
}

// Translate returns the translation as a point
func (s State) Translate() geom.Point {
	return geom.Pt(s.TranslateX, s.TranslateY)
}

// Viewport holds the current transform and the container size.
// It is not safe for concurrent use.
type Viewport struct {
	state State
	opts  Options
	size  geom.Point
}

// New creates a viewport at scale 1 with no translation
func New(opts *Options) *Viewport {
	return &Viewport{
		state: State{Scale: 1},
		opts:  opts.withDefaults(),
	}
}

// Options returns the effective options
func (v *Viewport) Options() Options { return v.opts }

// State returns a copy of the current transform
func (v *Viewport) State() State { return v.state }

// Scale returns the current zoom factor
func (v *Viewport) Scale() float64 { return v.state.Scale }

// SetState replaces the transform, clamping the scale into bounds
func (v *Viewport) SetState(s State) {
	s.Scale = geom.Clamp(s.Scale, v.opts.MinScale, v.opts.MaxScale)
	v.state = s
}

// Reset returns to scale 1 with no translation
func (v *Viewport) Reset() {
	v.SetState(State{Scale: 1})
}

// Resize records the container size in screen pixels
func (v *Viewport) Resize(width, height float64) {
	v.size = geom.Pt(width, height)
}

// Size returns the container size in screen pixels
func (v *Viewport) Size() geom.Point { return v.size }

// ScreenToContent maps a container-relative screen point into content space
func (v *Viewport) ScreenToContent(p geom.Point) geom.Point {
	return geom.Point{
		X: (p.X - v.state.TranslateX) / v.state.Scale,
		Y: (p.Y - v.state.TranslateY) / v.state.Scale,
	}
}

// ContentToScreen is the inverse of ScreenToContent
func (v *Viewport) ContentToScreen(p geom.Point) geom.Point {
	return geom.Point{
		X: p.X*v.state.Scale + v.state.TranslateX,
		Y: p.Y*v.state.Scale + v.state.TranslateY,
	}
}

// ContentCenter returns the content point currently at the middle of the container
func (v *Viewport) ContentCenter() geom.Point {
	return v.ScreenToContent(v.size.Div(2))
}

// Translate pans by a screen-space delta
func (v *Viewport) Translate(dx, dy float64) {
	v.state.TranslateX += dx
	v.state.TranslateY += dy
}

// SetTranslate sets the translation directly
func (v *Viewport) SetTranslate(t geom.Point) {
	v.state.TranslateX = t.X
	v.state.TranslateY = t.Y
}

// ZoomAt applies one wheel step anchored at the screen point p: the content
// point under p stays under p. It reports false when the scale is already
// pinned at the bound the wheel pushes toward, or when p or deltaY is not a
// finite number.
func (v *Viewport) ZoomAt(p geom.Point, deltaY float64) bool {
	if !geom.Finite(p.X, p.Y, deltaY) {
		return false
	}
	prev := v.state.Scale
	factor := math.Exp(-deltaY * v.opts.ZoomSensitivity)
	next := geom.Clamp(prev*factor, v.opts.MinScale, v.opts.MaxScale)
	if next == prev {
		return false
	}

	anchor := v.ScreenToContent(p)
	v.state.Scale = next
	v.state.TranslateX = p.X - anchor.X*next
	v.state.TranslateY = p.Y - anchor.Y*next
	return true
}

// Transform renders the state as a CSS transform for the content layer
func (v *Viewport) Transform() string {
	return fmt.Sprintf("translate(%spx, %spx) scale(%s)",
		geom.FormatFloat(v.state.TranslateX),
		geom.FormatFloat(v.state.TranslateY),
		geom.FormatFloat(v.state.Scale))
}
