package palette

import (
	"errors"
	"fmt"

	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/graph"
)

var ErrUnknownItem = errors.New("unknown palette item")

// RowKind distinguishes rendered palette rows
type RowKind int

const (
	RowGroup RowKind = iota // group header, inert
	RowItem
	RowEmpty // "No matches" placeholder, inert
)

// NoMatches is the text of the placeholder row
const NoMatches = "No matches"

// Row is one rendered line of the palette list
type Row struct {
	Kind  RowKind
	Group string
	Item  Item // set for RowItem
}

// BuildRows groups items, inserting a header whenever the group changes
func BuildRows(items []Item) []Row {
	if len(items) == 0 {
		return []Row{{Kind: RowEmpty}}
	}
	rows := make([]Row, 0, len(items)+2)
	group := ""
	for i, it := range items {
		if i == 0 || it.Group != group {
			group = it.Group
			rows = append(rows, Row{Kind: RowGroup, Group: group})
		}
		rows = append(rows, Row{Kind: RowItem, Group: group, Item: it})
	}
	return rows
}

// Stagger offsets successive spawns so they do not land on top of each other:
// a spawn at counter value n moves by ((n*StepX) mod ModX, (n*StepY) mod ModY).
type Stagger struct {
	StepX float64 `yaml:"staggerX" toml:"stagger_x"`
	ModX  float64 `yaml:"modX" toml:"mod_x"`
	StepY float64 `yaml:"staggerY" toml:"stagger_y"`
	ModY  float64 `yaml:"modY" toml:"mod_y"`
}

// DefaultStagger is the (20 mod 80, 12 mod 60) walk
var DefaultStagger = Stagger{StepX: 20, ModX: 80, StepY: 12, ModY: 60}

// Offset returns the displacement at counter value n
func (s Stagger) Offset(n int) geom.Point {
	return geom.Pt(wrap(float64(n)*s.StepX, s.ModX), wrap(float64(n)*s.StepY, s.ModY))
}

func wrap(v, m float64) float64 {
	if m <= 0 {
		return v
	}
	r := v - m*float64(int64(v/m))
	if r < 0 {
		r += m
	}
	return r
}

// Sequence is the node counter the palette shares with the node factory. A
// spawn is staggered by the counter's value before the spawn, and the counter
// is advanced once more after it, so palette spawns step it by two.
type Sequence interface {
	Seq() int
	Advance()
}

// CloseReason records why the palette closed
type CloseReason int

const (
	CloseButton CloseReason = iota
	ClickOutside
	CancelKey
	Activated
)

func (r CloseReason) String() string {
	switch r {
	case CloseButton:
		return "close-button"
	case ClickOutside:
		return "click-outside"
	case CancelKey:
		return "cancel-key"
	case Activated:
		return "activated"
	}
	return "unknown"
}

// Palette is the open/close, query and selection state around a catalog
type Palette struct {
	catalog *Catalog
	stagger Stagger
	seq     Sequence

	open     bool
	query    string
	rows     []Row
	selected int // index into rows, -1 when nothing selectable
	spawns   int
	closedBy CloseReason
}

// New creates a closed palette
func New(c *Catalog, s Stagger, seq Sequence) *Palette {
	p := &Palette{catalog: c, stagger: s, seq: seq}
	p.refresh()
	return p
}

// Catalog returns the underlying catalog
func (p *Palette) Catalog() *Catalog { return p.catalog }

// IsOpen reports whether the panel is shown
func (p *Palette) IsOpen() bool { return p.open }

// Query returns the current search text
func (p *Palette) Query() string { return p.query }

// Rows returns the rendered list for the current query
func (p *Palette) Rows() []Row { return p.rows }

// Spawns returns how many items have been activated
func (p *Palette) Spawns() int { return p.spawns }

// ClosedBy returns the reason of the last close
func (p *Palette) ClosedBy() CloseReason { return p.closedBy }

// SetStagger replaces the spawn offsets
func (p *Palette) SetStagger(s Stagger) { p.stagger = s }

// Open shows the panel with an empty query and the full catalog
func (p *Palette) Open() {
	p.open = true
	p.query = ""
	p.refresh()
}

// Close hides the panel. It reports false if it was already closed.
func (p *Palette) Close(reason CloseReason) bool {
	if !p.open {
		return false
	}
	p.open = false
	p.closedBy = reason
	return true
}

// SetQuery refilters the list
func (p *Palette) SetQuery(q string) {
	p.query = q
	p.refresh()
}

func (p *Palette) refresh() {
	p.rows = BuildRows(p.catalog.Filter(p.query))
	p.selected = -1
	p.Move(1)
}

// Selected returns the highlighted item
func (p *Palette) Selected() (Item, bool) {
	if p.selected < 0 {
		return Item{}, false
	}
	return p.rows[p.selected].Item, true
}

// SelectedIndex returns the highlighted row index, or -1
func (p *Palette) SelectedIndex() int { return p.selected }

// Move steps the selection by delta item rows, skipping headers. It stops at
// the ends of the list.
func (p *Palette) Move(delta int) {
	if delta == 0 {
		return
	}
	step := 1
	if delta < 0 {
		step, delta = -1, -delta
	}
	i := p.selected
	for delta > 0 {
		next := i + step
		for next >= 0 && next < len(p.rows) && p.rows[next].Kind != RowItem {
			next += step
		}
		if next < 0 || next >= len(p.rows) {
			break
		}
		i = next
		delta--
	}
	p.selected = i
}

// Activate spawns the item at center plus the stagger offset and closes the
// palette.
func (p *Palette) Activate(id string, center geom.Point) (*graph.Node, error) {
	it, ok := p.catalog.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("palette: activate %q: %w", id, ErrUnknownItem)
	}
	pos := center.Add(p.stagger.Offset(p.seq.Seq()))
	n, err := it.Spawn(pos)
	if err != nil {
		return nil, fmt.Errorf("palette: spawn %q: %w", id, err)
	}
	p.seq.Advance()
	p.spawns++
	p.Close(Activated)
	return n, nil
}

// ActivateSelected activates the highlighted item
func (p *Palette) ActivateSelected(center geom.Point) (*graph.Node, error) {
	it, ok := p.Selected()
	if !ok {
		return nil, fmt.Errorf("palette: nothing selected: %w", ErrUnknownItem)
	}
	return p.Activate(it.ID, center)
}
