// Package palette implements the searchable spawn menu: a static catalog of
// items, grouped filtering, keyboard selection and staggered spawning at the
// viewport center.
package palette

import (
	"fmt"
	"strings"

	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/graph"
	"github.com/recera/nodeflow/pkg/nodes"
)

// SpawnFunc creates a node at a content position
type SpawnFunc func(pos geom.Point) (*graph.Node, error)

// Item is one spawnable catalog entry
type Item struct {
	ID    string
	Label string
	Group string
	Badge string
	Spawn SpawnFunc
}

// Catalog is an ordered, immutable list of items
type Catalog struct {
	items []Item
	byID  map[string]int
}

// NewCatalog builds a catalog. It panics on an item without a spawn function
// or a duplicate id.
func NewCatalog(items ...Item) *Catalog {
	c := &Catalog{
		items: make([]Item, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	copy(c.items, items)
	for i, it := range c.items {
		if it.Spawn == nil {
			panic(fmt.Sprintf("palette: item %q has no spawn function", it.ID))
		}
		if _, dup := c.byID[it.ID]; dup {
			panic(fmt.Sprintf("palette: duplicate item %q", it.ID))
		}
		c.byID[it.ID] = i
	}
	return c
}

// Items returns every item in catalog order
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Lookup finds an item by id
func (c *Catalog) Lookup(id string) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Filter returns the items whose label, group or id contains the trimmed
// query, case-insensitively. An empty query returns everything.
func (c *Catalog) Filter(query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Items()
	}
	var out []Item
	for _, it := range c.items {
		if strings.Contains(strings.ToLower(it.Label), q) ||
			strings.Contains(strings.ToLower(it.Group), q) ||
			strings.Contains(strings.ToLower(it.ID), q) {
			out = append(out, it)
		}
	}
	return out
}

func constant(f *nodes.Factory, id string, t nodes.ValueType) Item {
	return Item{
		ID:    id,
		Label: t.Label(),
		Group: "Constants",
		Badge: "constant",
		Spawn: func(pos geom.Point) (*graph.Node, error) {
			return f.SpawnValue(pos, t)
		},
	}
}

// DefaultCatalog lists the seven constant types followed by the operation nodes
func DefaultCatalog(f *nodes.Factory) *Catalog {
	return NewCatalog(
		constant(f, "const:string", nodes.TypeString),
		constant(f, "const:int", nodes.TypeInt),
		constant(f, "const:float", nodes.TypeFloat),
		constant(f, "const:bool", nodes.TypeBool),
		constant(f, "const:list_s", nodes.TypeListString),
		constant(f, "const:list_i", nodes.TypeListInt),
		constant(f, "const:list_f", nodes.TypeListFloat),
		Item{
			ID:    "node:add",
			Label: "Add (a + b)",
			Group: "Nodes",
			Badge: "node",
			Spawn: func(pos geom.Point) (*graph.Node, error) {
				return f.SpawnAdd(pos), nil
			},
		},
		Item{
			ID:    "node:display",
			Label: "Display",
			Group: "Nodes",
			Badge: "node",
			Spawn: func(pos geom.Point) (*graph.Node, error) {
				return f.SpawnDisplay(pos), nil
			},
		},
	)
}
