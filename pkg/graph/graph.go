package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/recera/nodeflow/pkg/geom"
)

var (
	ErrUnknownPort = errors.New("unknown port")
	ErrUnknownNode = errors.New("unknown node")
	ErrNotOutput   = errors.New("source is not an output port")
	ErrNotInput    = errors.New("target is not an input port")
	ErrSamePort    = errors.New("source and target are the same port")
)

// Graph owns nodes, ports and connections. It is not safe for concurrent
// use; hosts serialise access.
type Graph struct {
	nodes map[NodeID]*Node
	order []NodeID // insertion order, later nodes paint on top
	ports map[PortID]*Port

	conns   map[ConnID]*Connection
	inputs  map[PortID]*Connection
	outputs map[PortID]map[ConnID]*Connection

	nextNode NodeID
	nextPort PortID
	nextConn ConnID

	bend geom.Bend
}

// Option configures a Graph
type Option func(*Graph)

// WithBend sets the connector bend used when routing wires
func WithBend(b geom.Bend) Option {
	return func(g *Graph) {
		g.bend = b
	}
}

// New creates an empty graph
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:   make(map[NodeID]*Node),
		ports:   make(map[PortID]*Port),
		conns:   make(map[ConnID]*Connection),
		inputs:  make(map[PortID]*Connection),
		outputs: make(map[PortID]map[ConnID]*Connection),
		bend:    geom.DefaultBend,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Bend returns the connector bend used for routing
func (g *Graph) Bend() geom.Bend { return g.bend }

// AddNode registers a node and its ports, assigning fresh handles
func (g *Graph) AddNode(spec NodeSpec) *Node {
	g.nextNode++
	n := &Node{
		ID:     g.nextNode,
		Label:  spec.Label,
		Kind:   spec.Kind,
		Title:  spec.Title,
		Pos:    spec.Pos,
		Size:   spec.Size,
		Header: spec.Header,
		Data:   spec.Data,
		Ports:  make([]PortID, 0, len(spec.Ports)),
	}
	for _, ps := range spec.Ports {
		g.nextPort++
		p := &Port{
			ID:     g.nextPort,
			Node:   n.ID,
			Dir:    ps.Dir,
			Name:   ps.Name,
			Offset: ps.Offset,
		}
		g.ports[p.ID] = p
		n.Ports = append(n.Ports, p.ID)
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return n
}

// Node returns the node with the given handle, or nil
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// Port returns the port with the given handle, or nil
func (g *Graph) Port(id PortID) *Port {
	return g.ports[id]
}

// Nodes returns all nodes in paint order
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int { return len(g.nodes) }

// NodeByLabel finds a node by its label, or nil
func (g *Graph) NodeByLabel(label string) *Node {
	for _, id := range g.order {
		if n := g.nodes[id]; n.Label == label {
			return n
		}
	}
	return nil
}

// PortByName finds a port on a node by direction and name, or nil
func (g *Graph) PortByName(node NodeID, dir Direction, name string) *Port {
	n := g.nodes[node]
	if n == nil {
		return nil
	}
	for _, pid := range n.Ports {
		if p := g.ports[pid]; p.Dir == dir && p.Name == name {
			return p
		}
	}
	return nil
}

// PortKey returns the display key "<label>:<in|out>:<name>" of a port
func (g *Graph) PortKey(id PortID) string {
	p := g.ports[id]
	if p == nil {
		return ""
	}
	label := ""
	if n := g.nodes[p.Node]; n != nil {
		label = n.Label
	}
	return fmt.Sprintf("%s:%s:%s", label, p.Dir, p.Name)
}

// MoveNode sets a node's position and re-routes every wire touching it.
// It returns the re-routed connections.
func (g *Graph) MoveNode(id NodeID, pos geom.Point) ([]*Connection, error) {
	n := g.nodes[id]
	if n == nil {
		return nil, fmt.Errorf("graph: move node %d: %w", id, ErrUnknownNode)
	}
	n.Pos = pos
	touched := g.ConnectionsOfNode(id)
	for _, c := range touched {
		g.route(c)
	}
	return touched, nil
}

// AddConnection wires source (an output) to target (an input). Any existing
// connection on target is removed first.
func (g *Graph) AddConnection(source, target PortID) (*Connection, error) {
	src := g.ports[source]
	if src == nil {
		return nil, fmt.Errorf("graph: source %d: %w", source, ErrUnknownPort)
	}
	dst := g.ports[target]
	if dst == nil {
		return nil, fmt.Errorf("graph: target %d: %w", target, ErrUnknownPort)
	}
	if source == target {
		return nil, fmt.Errorf("graph: connect %d: %w", source, ErrSamePort)
	}
	if src.Dir != Output {
		return nil, fmt.Errorf("graph: source %s: %w", g.PortKey(source), ErrNotOutput)
	}
	if dst.Dir != Input {
		return nil, fmt.Errorf("graph: target %s: %w", g.PortKey(target), ErrNotInput)
	}

	if existing := g.inputs[target]; existing != nil {
		g.RemoveConnection(existing)
	}

	g.nextConn++
	c := &Connection{ID: g.nextConn, Source: source, Target: target}
	g.conns[c.ID] = c
	g.inputs[target] = c
	set := g.outputs[source]
	if set == nil {
		set = make(map[ConnID]*Connection)
		g.outputs[source] = set
	}
	set[c.ID] = c
	g.route(c)
	return c, nil
}

// RemoveConnection deletes c from all indexes. It reports whether c was present.
func (g *Graph) RemoveConnection(c *Connection) bool {
	if c == nil || g.conns[c.ID] != c {
		return false
	}
	delete(g.conns, c.ID)
	if g.inputs[c.Target] == c {
		delete(g.inputs, c.Target)
	}
	if set := g.outputs[c.Source]; set != nil {
		delete(set, c.ID)
		if len(set) == 0 {
			delete(g.outputs, c.Source)
		}
	}
	return true
}

// Disconnect removes the connection feeding an input port, if any
func (g *Graph) Disconnect(input PortID) (*Connection, bool) {
	c := g.inputs[input]
	if c == nil {
		return nil, false
	}
	return c, g.RemoveConnection(c)
}

// ConnectionOf returns the single connection targeting an input port, or nil
func (g *Graph) ConnectionOf(input PortID) *Connection {
	return g.inputs[input]
}

// ConnectionsFrom returns the connections sourced at an output port, by ID
func (g *Graph) ConnectionsFrom(output PortID) []*Connection {
	set := g.outputs[output]
	out := make([]*Connection, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	sortConns(out)
	return out
}

// Connections returns every connection, by ID
func (g *Graph) Connections() []*Connection {
	out := make([]*Connection, 0, len(g.conns))
	for _, c := range g.conns {
		out = append(out, c)
	}
	sortConns(out)
	return out
}

// ConnectionCount returns the number of connections
func (g *Graph) ConnectionCount() int { return len(g.conns) }

// ConnectionsOfNode returns connections whose source or target belongs to the node
func (g *Graph) ConnectionsOfNode(id NodeID) []*Connection {
	n := g.nodes[id]
	if n == nil {
		return nil
	}
	seen := make(map[ConnID]bool)
	var out []*Connection
	for _, pid := range n.Ports {
		if c := g.inputs[pid]; c != nil && !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
		for _, c := range g.outputs[pid] {
			if !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}
	sortConns(out)
	return out
}

// SetBend changes the connector bend and reroutes every wire
func (g *Graph) SetBend(b geom.Bend) {
	g.bend = b
	g.Reroute()
}

// Reroute recomputes the path of every connection
func (g *Graph) Reroute() {
	for _, c := range g.conns {
		g.route(c)
	}
}

func (g *Graph) route(c *Connection) {
	c.Path = geom.Connector(g.PortCenter(c.Source), g.PortCenter(c.Target), g.bend)
}

func sortConns(cs []*Connection) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
}
