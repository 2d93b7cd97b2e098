package graph

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodeflow/pkg/geom"
)

// addBox adds a 100x60 node with inputs on the left edge and outputs on the right
func addBox(g *Graph, label string, at geom.Point, inputs, outputs []string) *Node {
	var ports []PortSpec
	for i, name := range inputs {
		ports = append(ports, PortSpec{Dir: Input, Name: name, Offset: geom.Pt(0, 30+float64(i)*20)})
	}
	for i, name := range outputs {
		ports = append(ports, PortSpec{Dir: Output, Name: name, Offset: geom.Pt(100, 30+float64(i)*20)})
	}
	return g.AddNode(NodeSpec{
		Label:  label,
		Kind:   KindAdd,
		Title:  label,
		Pos:    at,
		Size:   geom.Pt(100, 60),
		Header: 20,
		Ports:  ports,
	})
}

func port(t *testing.T, g *Graph, n *Node, dir Direction, name string) PortID {
	t.Helper()
	p := g.PortByName(n.ID, dir, name)
	require.NotNil(t, p, "port %s:%s:%s", n.Label, dir, name)
	return p.ID
}

func TestAddNode_AssignsHandles(t *testing.T) {
	g := New()
	a := addBox(g, "A1", geom.Pt(0, 0), []string{"a", "b"}, []string{"sum"})
	d := addBox(g, "D2", geom.Pt(200, 0), []string{"value"}, nil)

	assert.NotEqual(t, a.ID, d.ID)
	assert.Len(t, a.Ports, 3)
	assert.Len(t, d.Ports, 1)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, "A1:in:b", g.PortKey(a.Ports[1]))
	assert.Equal(t, "A1:out:sum", g.PortKey(a.Ports[2]))
	assert.Same(t, d, g.NodeByLabel("D2"))
	assert.Nil(t, g.NodeByLabel("X9"))
}

func TestAddConnection_Retarget(t *testing.T) {
	g := New()
	v1 := addBox(g, "V1", geom.Pt(0, 0), nil, []string{"value"})
	v2 := addBox(g, "V2", geom.Pt(0, 100), nil, []string{"value"})
	d := addBox(g, "D3", geom.Pt(300, 0), []string{"value"}, nil)

	o1 := port(t, g, v1, Output, "value")
	o2 := port(t, g, v2, Output, "value")
	in := port(t, g, d, Input, "value")

	first, err := g.AddConnection(o1, in)
	require.NoError(t, err)
	assert.Same(t, first, g.ConnectionOf(in))

	second, err := g.AddConnection(o2, in)
	require.NoError(t, err)

	assert.Equal(t, 1, g.ConnectionCount())
	assert.Same(t, second, g.ConnectionOf(in))
	assert.Equal(t, o2, g.ConnectionOf(in).Source)
	assert.Empty(t, g.ConnectionsFrom(o1))
	_, stillIndexed := g.outputs[o1]
	assert.False(t, stillIndexed, "empty output sets are dropped")
	assert.False(t, g.RemoveConnection(first), "evicted connection is gone")
	require.NoError(t, g.Check())
}

func TestAddConnection_FanOut(t *testing.T) {
	g := New()
	v := addBox(g, "V1", geom.Pt(0, 0), nil, []string{"value"})
	a := addBox(g, "A2", geom.Pt(300, 0), []string{"a", "b"}, []string{"sum"})

	out := port(t, g, v, Output, "value")
	ca, err := g.AddConnection(out, port(t, g, a, Input, "a"))
	require.NoError(t, err)
	cb, err := g.AddConnection(out, port(t, g, a, Input, "b"))
	require.NoError(t, err)

	assert.Equal(t, []*Connection{ca, cb}, g.ConnectionsFrom(out))
	assert.Equal(t, []*Connection{ca, cb}, g.ConnectionsOfNode(a.ID))
	require.NoError(t, g.Check())
}

func TestAddConnection_Errors(t *testing.T) {
	g := New()
	a := addBox(g, "A1", geom.Pt(0, 0), []string{"a"}, []string{"sum"})
	in := port(t, g, a, Input, "a")
	out := port(t, g, a, Output, "sum")

	tests := []struct {
		name   string
		src    PortID
		dst    PortID
		target error
	}{
		{"unknown source", 99, in, ErrUnknownPort},
		{"unknown target", out, 99, ErrUnknownPort},
		{"same port", out, out, ErrSamePort},
		{"source not output", in, out, ErrNotOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.AddConnection(tt.src, tt.dst)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
	assert.Zero(t, g.ConnectionCount())
}

func TestAddConnection_TargetNotInput(t *testing.T) {
	g := New()
	v1 := addBox(g, "V1", geom.Pt(0, 0), nil, []string{"value"})
	v2 := addBox(g, "V2", geom.Pt(0, 100), nil, []string{"value"})
	_, err := g.AddConnection(port(t, g, v1, Output, "value"), port(t, g, v2, Output, "value"))
	assert.ErrorIs(t, err, ErrNotInput)
}

func TestAddConnection_SameNodeAllowed(t *testing.T) {
	g := New()
	a := addBox(g, "A1", geom.Pt(0, 0), []string{"a"}, []string{"sum"})
	_, err := g.AddConnection(port(t, g, a, Output, "sum"), port(t, g, a, Input, "a"))
	assert.NoError(t, err)
}

func TestDisconnect(t *testing.T) {
	g := New()
	v := addBox(g, "V1", geom.Pt(0, 0), nil, []string{"value"})
	d := addBox(g, "D2", geom.Pt(300, 0), []string{"value"}, nil)
	in := port(t, g, d, Input, "value")

	_, ok := g.Disconnect(in)
	assert.False(t, ok, "nothing to disconnect yet")

	c, err := g.AddConnection(port(t, g, v, Output, "value"), in)
	require.NoError(t, err)

	removed, ok := g.Disconnect(in)
	assert.True(t, ok)
	assert.Same(t, c, removed)
	assert.Nil(t, g.ConnectionOf(in))
	assert.Zero(t, g.ConnectionCount())
	require.NoError(t, g.Check())
}

func TestMoveNode_Reroutes(t *testing.T) {
	g := New()
	v := addBox(g, "V1", geom.Pt(0, 0), nil, []string{"value"})
	d := addBox(g, "D2", geom.Pt(300, 0), []string{"value"}, nil)
	other := addBox(g, "D3", geom.Pt(300, 200), []string{"value"}, nil)

	c, err := g.AddConnection(port(t, g, v, Output, "value"), port(t, g, d, Input, "value"))
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(100, 30), c.Path.P0)
	assert.Equal(t, geom.Pt(300, 30), c.Path.P1)

	moved, err := g.MoveNode(d.ID, geom.Pt(400, 50))
	require.NoError(t, err)
	assert.Equal(t, []*Connection{c}, moved)
	assert.Equal(t, geom.Pt(400, 80), c.Path.P1)
	assert.Equal(t, geom.Connector(geom.Pt(100, 30), geom.Pt(400, 80), geom.DefaultBend), c.Path)

	moved, err = g.MoveNode(other.ID, geom.Pt(0, 400))
	require.NoError(t, err)
	assert.Empty(t, moved)

	_, err = g.MoveNode(42, geom.Pt(0, 0))
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestSetBend_Reroutes(t *testing.T) {
	g := New()
	v := addBox(g, "V1", geom.Pt(0, 0), nil, []string{"value"})
	d := addBox(g, "D2", geom.Pt(300, 0), []string{"value"}, nil)
	c, err := g.AddConnection(port(t, g, v, Output, "value"), port(t, g, d, Input, "value"))
	require.NoError(t, err)

	tight := geom.Bend{Factor: 0.1, Min: 5, Max: 10}
	g.SetBend(tight)
	assert.Equal(t, tight, g.Bend())
	assert.Equal(t, geom.Connector(geom.Pt(100, 30), geom.Pt(300, 30), tight), c.Path)
	assert.Equal(t, geom.Pt(110, 30), c.Path.C1)
}

func TestRandomOperations_KeepIndexesConsistent(t *testing.T) {
	g := New()
	var outs, ins []PortID
	for i := 0; i < 6; i++ {
		n := addBox(g, "N", geom.Pt(float64(i)*150, 0), []string{"a", "b"}, []string{"x", "y"})
		for _, pid := range n.Ports {
			if g.Port(pid).Dir == Input {
				ins = append(ins, pid)
			} else {
				outs = append(outs, pid)
			}
		}
	}

	rng := rand.New(rand.NewSource(42))
	for step := 0; step < 3000; step++ {
		switch rng.Intn(3) {
		case 0, 1:
			_, err := g.AddConnection(outs[rng.Intn(len(outs))], ins[rng.Intn(len(ins))])
			require.NoError(t, err)
		case 2:
			if cs := g.Connections(); len(cs) > 0 {
				g.RemoveConnection(cs[rng.Intn(len(cs))])
			}
		}

		require.NoError(t, g.Check(), "step %d", step)
		count := 0
		for _, in := range ins {
			if g.ConnectionOf(in) != nil {
				count++
			}
		}
		require.Equal(t, g.ConnectionCount(), count, "every connection owns exactly one input")
	}
}
