package graph

import (
	"math"

	"github.com/recera/nodeflow/pkg/geom"
)

// PortCenter returns the port's center in content coordinates
func (g *Graph) PortCenter(id PortID) geom.Point {
	p := g.ports[id]
	if p == nil {
		return geom.Point{}
	}
	n := g.nodes[p.Node]
	if n == nil {
		return p.Offset
	}
	return n.Pos.Add(p.Offset)
}

// PortAt returns the port whose center is nearest to p among those within
// radius (content units), or nil. Ties go to the node painted on top.
func (g *Graph) PortAt(p geom.Point, radius float64) *Port {
	var best *Port
	bestD2 := radius * radius
	g.eachPortTopDown(func(port *Port) {
		d2 := g.PortCenter(port.ID).Dist2(p)
		if d2 < bestD2 || (best == nil && d2 == bestD2) {
			best, bestD2 = port, d2
		}
	})
	return best
}

// NearestInput returns the input port nearest to p and its distance, provided
// that distance is at most maxDist. Otherwise it returns nil.
func (g *Graph) NearestInput(p geom.Point, maxDist float64) (*Port, float64) {
	var best *Port
	bestD2 := math.Inf(1)
	g.eachPortTopDown(func(port *Port) {
		if port.Dir != Input {
			return
		}
		if d2 := g.PortCenter(port.ID).Dist2(p); d2 < bestD2 {
			best, bestD2 = port, d2
		}
	})
	if best == nil {
		return nil, 0
	}
	d := math.Sqrt(bestD2)
	if d > maxDist {
		return nil, 0
	}
	return best, d
}

// NodeAt returns the topmost node whose bounds contain p, or nil
func (g *Graph) NodeAt(p geom.Point) *Node {
	for i := len(g.order) - 1; i >= 0; i-- {
		if n := g.nodes[g.order[i]]; n.Bounds().Contains(p) {
			return n
		}
	}
	return nil
}

// HeaderAt returns the topmost node whose header strip contains p, or nil.
// A node overlapping the header with its body hides it.
func (g *Graph) HeaderAt(p geom.Point) *Node {
	n := g.NodeAt(p)
	if n == nil || !n.HeaderBounds().Contains(p) {
		return nil
	}
	return n
}

func (g *Graph) eachPortTopDown(fn func(*Port)) {
	for i := len(g.order) - 1; i >= 0; i-- {
		n := g.nodes[g.order[i]]
		for _, pid := range n.Ports {
			fn(g.ports[pid])
		}
	}
}
