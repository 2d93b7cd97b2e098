package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/recera/nodeflow/pkg/editor"
	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/graph"
	"github.com/recera/nodeflow/pkg/nodes"
	"github.com/recera/nodeflow/pkg/palette"
)

// Element keys of the fixed parts of the scene
const (
	RootKey          = "editor"
	ViewportKey      = "viewport"
	WiresKey         = "wires"
	ProvisionalKey   = "wire-provisional"
	SpawnButtonKey   = "spawn"
	PaletteKey       = "palette"
	PaletteCloseKey  = "palette-close"
	PaletteSearchKey = "palette-search"
	PaletteListKey   = "palette-list"
)

const wireColor = "#8fd3ff"

// Build produces the scene tree for the editor's current state
func Build(ed *editor.Editor) *Element {
	root := El("div", RootKey, Attrs{
		"id":       "qagentEditorCanvas",
		"class":    "qagent-editor",
		"tabindex": "0",
	},
		buildViewport(ed),
		TextEl("button", SpawnButtonKey, Attrs{
			"id":         "spawnNodeBtn",
			"class":      "spawn-node-btn",
			"data-input": "palette:open",
		}, "+"),
		buildPalette(ed.Palette()),
	)
	if c := ed.Cursor(); c != "" {
		root.Attrs["style"] = "cursor: " + c
	}
	return root
}

func buildViewport(ed *editor.Editor) *Element {
	g := ed.Graph()
	dragged, dragging := ed.DraggedNode()

	wires := El("svg", WiresKey, Attrs{"id": "wiresCanvas", "class": "wires"})
	for _, c := range g.Connections() {
		wires.Kids = append(wires.Kids, wirePath(WireKey(c.ID), "wire", c.Path))
	}
	if path, ok := ed.ProvisionalWire(); ok {
		wires.Kids = append(wires.Kids, wirePath(ProvisionalKey, "wire arrow", path))
	}

	vp := El("div", ViewportKey, Attrs{
		"id":    "qagentViewport",
		"class": "qagent-viewport",
		"style": "transform: " + ed.Viewport().Transform(),
	}, wires)
	for _, n := range g.Nodes() {
		vp.Kids = append(vp.Kids, buildNode(g, n, dragging && dragged == n.ID))
	}
	return vp
}

func wirePath(key, class string, c geom.Cubic) *Element {
	return El("path", key, Attrs{
		"class":          class,
		"d":              c.SVG(),
		"fill":           "none",
		"stroke":         wireColor,
		"stroke-width":   "3",
		"stroke-linecap": "round",
	})
}

// WireKey is the element key of a committed wire
func WireKey(id graph.ConnID) string { return "wire-" + strconv.FormatUint(uint64(id), 10) }

// NodeKey is the element key of a node
func NodeKey(id graph.NodeID) string { return "node-" + strconv.FormatUint(uint64(id), 10) }

// PortKey is the element key of a port handle
func PortKey(id graph.PortID) string { return "port-" + strconv.FormatUint(uint64(id), 10) }

// PaletteItemKey is the element key of a palette row
func PaletteItemKey(id string) string { return "palette-item-" + id }

func classes(cs ...string) string {
	var out []string
	for _, c := range cs {
		if c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, " ")
}

func when(cond bool, class string) string {
	if cond {
		return class
	}
	return ""
}

func buildNode(g *graph.Graph, n *graph.Node, dragging bool) *Element {
	key := NodeKey(n.ID)
	el := El("div", key, Attrs{
		"class":     classes("qagent-node", when(n.Kind == graph.KindValue, "value-node"), when(dragging, "dragging")),
		"data-node": n.Label,
		"style": fmt.Sprintf("left: %spx; top: %spx; width: %spx",
			geom.FormatFloat(n.Pos.X), geom.FormatFloat(n.Pos.Y), geom.FormatFloat(n.Size.X)),
	},
		TextEl("div", key+"-header", Attrs{"class": "header"}, n.Title),
	)

	body := El("div", key+"-body", Attrs{"class": "body"})
	if v := nodes.Value(n); v != nil {
		body.Kids = append(body.Kids, buildValueConfig(key, n.Label, v))
	}
	for _, pid := range n.Ports {
		body.Kids = append(body.Kids, buildPortRow(g, g.Port(pid)))
	}
	el.Kids = append(el.Kids, body)
	return el
}

func buildValueConfig(key, label string, v *nodes.ValueData) *Element {
	sel := El("select", key+"-type", Attrs{
		"class":      "value-type",
		"data-input": "value:type:" + label,
	})
	for _, t := range nodes.ValueTypes {
		opt := TextEl("option", key+"-type-"+string(t), Attrs{"value": string(t)}, t.Label())
		if t == v.Type {
			opt.Attrs["selected"] = ""
		}
		sel.Kids = append(sel.Kids, opt)
	}

	toggle := v.Type.Widget() == nodes.WidgetToggle
	text := El("input", key+"-text", Attrs{
		"class":       classes("value-input", when(toggle, "hidden")),
		"type":        "text",
		"placeholder": v.Type.Placeholder(),
		"value":       v.Text,
		"data-input":  "value:text:" + label,
	})
	check := El("input", key+"-check", Attrs{
		"class":      "value-bool-input",
		"type":       "checkbox",
		"data-input": "value:toggle:" + label,
	})
	if v.Bool {
		check.Attrs["checked"] = ""
	}
	boolWrap := El("label", key+"-bool", Attrs{"class": classes("value-bool", when(!toggle, "hidden"))},
		check,
		TextEl("span", key+"-bool-text", nil, " true / false"),
	)

	return El("div", key+"-config", Attrs{"class": "value-config"}, sel, text, boolWrap)
}

func buildPortRow(g *graph.Graph, p *graph.Port) *Element {
	dir := p.Dir.String()
	rowKey := PortKey(p.ID) + "-row"
	portClass := "port input"
	if p.Dir == graph.Output {
		portClass = "port output"
	}
	return El("div", rowKey, Attrs{"class": classes("port-row", when(p.Dir == graph.Output, "output"))},
		TextEl("span", rowKey+"-name", nil, p.Name),
		El("span", PortKey(p.ID), Attrs{
			"class":        portClass,
			"data-port-id": g.PortKey(p.ID),
			"data-dir":     dir,
		}),
	)
}

func buildPalette(p *palette.Palette) *Element {
	list := El("div", PaletteListKey, Attrs{"class": "node-list"})
	sel := p.SelectedIndex()
	for i, row := range p.Rows() {
		switch row.Kind {
		case palette.RowGroup:
			list.Kids = append(list.Kids,
				TextEl("div", "palette-group-"+row.Group, Attrs{"class": "node-group"}, row.Group))
		case palette.RowEmpty:
			list.Kids = append(list.Kids,
				TextEl("div", "palette-empty", Attrs{"class": "node-item"}, palette.NoMatches))
		case palette.RowItem:
			key := PaletteItemKey(row.Item.ID)
			list.Kids = append(list.Kids, El("div", key, Attrs{
				"class":      classes("node-item", when(i == sel, "selected")),
				"data-input": "palette:item:" + row.Item.ID,
			},
				TextEl("div", key+"-label", nil, row.Item.Label),
				TextEl("div", key+"-badge", Attrs{"class": "badge"}, row.Item.Badge),
			))
		}
	}

	modal := El("div", "palette-modal", Attrs{
		"class":      "node-modal",
		"role":       "dialog",
		"aria-modal": "true",
	},
		El("div", "palette-header", Attrs{"class": "node-modal-header"},
			TextEl("div", "palette-title", Attrs{"class": "node-modal-title"}, "Add node"),
			TextEl("button", PaletteCloseKey, Attrs{
				"class":      "node-modal-close",
				"aria-label": "Close",
				"data-input": "palette:close",
			}, "✕"),
		),
		El("input", PaletteSearchKey, Attrs{
			"class":       "node-search",
			"type":        "text",
			"placeholder": "Search nodes & constants…",
			"value":       p.Query(),
			"data-input":  "palette:query",
		}),
		list,
	)

	return El("div", PaletteKey, Attrs{
		"id":         "nodePalette",
		"class":      classes("node-modal-overlay", when(p.IsOpen(), "open")),
		"data-input": "palette:outside",
	}, modal)
}
