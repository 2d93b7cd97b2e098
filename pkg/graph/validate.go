package graph

import (
	"errors"
	"fmt"
)

// Check verifies that the connection set, the input index and the output
// index agree with each other and with the port arena. It is read-only.
func (g *Graph) Check() error {
	var errs []error

	for id, c := range g.conns {
		if c.ID != id {
			errs = append(errs, fmt.Errorf("connection %d stored under %d", c.ID, id))
		}
		src, dst := g.ports[c.Source], g.ports[c.Target]
		if src == nil || src.Dir != Output {
			errs = append(errs, fmt.Errorf("%v: source is not a known output", c))
		}
		if dst == nil || dst.Dir != Input {
			errs = append(errs, fmt.Errorf("%v: target is not a known input", c))
		}
		if g.inputs[c.Target] != c {
			errs = append(errs, fmt.Errorf("%v: missing from input index", c))
		}
		if g.outputs[c.Source][c.ID] != c {
			errs = append(errs, fmt.Errorf("%v: missing from output index", c))
		}
	}

	for pid, c := range g.inputs {
		if g.conns[c.ID] != c {
			errs = append(errs, fmt.Errorf("input %d indexes stale %v", pid, c))
		}
		if c.Target != pid {
			errs = append(errs, fmt.Errorf("input %d indexes %v targeting %d", pid, c, c.Target))
		}
	}

	for pid, set := range g.outputs {
		if len(set) == 0 {
			errs = append(errs, fmt.Errorf("output %d has an empty connection set", pid))
		}
		for id, c := range set {
			if g.conns[id] != c {
				errs = append(errs, fmt.Errorf("output %d indexes stale %v", pid, c))
			}
			if c.Source != pid {
				errs = append(errs, fmt.Errorf("output %d indexes %v sourced at %d", pid, c, c.Source))
			}
		}
	}

	return errors.Join(errs...)
}
