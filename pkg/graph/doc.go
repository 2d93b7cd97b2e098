// Package graph is the connection model of the node editor: an arena of
// nodes and ports keyed by integer handles, plus the set of wires between
// them. An input port is the target of at most one connection at any time;
// an output port may feed any number of them.
package graph
