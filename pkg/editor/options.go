package editor

import (
	"go.uber.org/zap"

	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/palette"
	"github.com/recera/nodeflow/pkg/viewport"
)

const (
	DefaultDropRadius = 18 // screen pixels
	DefaultPortRadius = 7  // content units
)

// Options configures an Editor
type Options struct {
	Viewport viewport.Options

	// DropRadius is the wire drop tolerance in screen pixels. It is divided
	// by the current scale, so the on-screen tolerance is zoom independent.
	DropRadius float64

	// PortRadius is the hit radius of a port in content units
	PortRadius float64

	Bend    geom.Bend
	Stagger palette.Stagger
	Logger  *zap.Logger
}

func (o *Options) withDefaults() Options {
	d := Options{
		DropRadius: DefaultDropRadius,
		PortRadius: DefaultPortRadius,
		Bend:       geom.DefaultBend,
		Stagger:    palette.DefaultStagger,
		Logger:     zap.NewNop(),
	}
	if o == nil {
		return d
	}
	d.Viewport = o.Viewport
	if o.DropRadius > 0 {
		d.DropRadius = o.DropRadius
	}
	if o.PortRadius > 0 {
		d.PortRadius = o.PortRadius
	}
	if o.Bend != (geom.Bend{}) {
		d.Bend = o.Bend
	}
	if o.Stagger != (palette.Stagger{}) {
		d.Stagger = o.Stagger
	}
	if o.Logger != nil {
		d.Logger = o.Logger
	}
	return d
}
