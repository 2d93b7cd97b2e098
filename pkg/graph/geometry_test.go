package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodeflow/pkg/geom"
)

func TestPortAt(t *testing.T) {
	g := New()
	v := addBox(g, "V1", geom.Pt(0, 0), nil, []string{"value"})
	d := addBox(g, "D2", geom.Pt(300, 0), []string{"value"}, nil)

	tests := []struct {
		name string
		at   geom.Point
		want *Port
	}{
		{"center of output", geom.Pt(100, 30), g.PortByName(v.ID, Output, "value")},
		{"near input", geom.Pt(303, 34), g.PortByName(d.ID, Input, "value")},
		{"on the radius", geom.Pt(307, 30), g.PortByName(d.ID, Input, "value")},
		{"just outside", geom.Pt(307.5, 30), nil},
		{"empty canvas", geom.Pt(200, 200), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.PortAt(tt.at, 7))
		})
	}
}

func TestPortAt_PrefersNearest(t *testing.T) {
	g := New()
	a := addBox(g, "A1", geom.Pt(0, 0), []string{"a", "b"}, nil)
	// a at y=30, b at y=50
	got := g.PortAt(geom.Pt(0, 42), 15)
	require.NotNil(t, got)
	assert.Equal(t, g.PortByName(a.ID, Input, "b"), got)
}

func TestNearestInput(t *testing.T) {
	g := New()
	addBox(g, "V1", geom.Pt(0, 0), nil, []string{"value"})
	d := addBox(g, "D2", geom.Pt(300, 0), []string{"value"}, nil)
	in := g.PortByName(d.ID, Input, "value")

	p, dist := g.NearestInput(geom.Pt(310, 30), 18)
	assert.Equal(t, in, p)
	assert.InDelta(t, 10, dist, 1e-9)

	p, _ = g.NearestInput(geom.Pt(320, 30), 18)
	assert.Nil(t, p, "20 units is beyond the radius")

	// the output at (100,30) is closer but never a candidate
	p, _ = g.NearestInput(geom.Pt(102, 30), 18)
	assert.Nil(t, p)

	p, _ = New().NearestInput(geom.Pt(0, 0), 100)
	assert.Nil(t, p)
}

func TestNodeAtAndHeaderAt(t *testing.T) {
	g := New()
	bottom := addBox(g, "A1", geom.Pt(0, 0), nil, nil)
	top := addBox(g, "A2", geom.Pt(50, -15), nil, nil)

	assert.Same(t, bottom, g.NodeAt(geom.Pt(10, 10)))
	assert.Same(t, top, g.NodeAt(geom.Pt(60, 20)), "later nodes paint on top")
	assert.Nil(t, g.NodeAt(geom.Pt(500, 500)))

	assert.Same(t, bottom, g.HeaderAt(geom.Pt(10, 5)))
	assert.Same(t, top, g.HeaderAt(geom.Pt(60, -10)))
	assert.Nil(t, g.HeaderAt(geom.Pt(60, 10)), "covered by the body of the node above")
	assert.Nil(t, g.HeaderAt(geom.Pt(10, 40)), "body is not a drag handle")
}
