package scene

import (
	"html"
	"io"
	"sort"
	"strings"
)

// voidElements cannot have children or a closing tag
var voidElements = map[string]bool{
	"br":    true,
	"hr":    true,
	"img":   true,
	"input": true,
	"link":  true,
	"meta":  true,
}

// booleanAttributes render as a bare name when present
var booleanAttributes = map[string]bool{
	"checked":   true,
	"disabled":  true,
	"hidden":    true,
	"readonly":  true,
	"selected":  true,
	"autofocus": true,
}

// Renderer writes elements as HTML
type Renderer struct {
	w   io.Writer
	err error
}

// NewRenderer creates a renderer writing to w
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render writes e and its subtree
func (r *Renderer) Render(e *Element) error {
	r.element(e)
	return r.err
}

func (r *Renderer) write(s string) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, s)
}

func (r *Renderer) element(e *Element) {
	if e == nil || r.err != nil {
		return
	}
	r.write("<")
	r.write(e.Tag)
	if e.Key != "" {
		r.attr(KeyAttr, e.Key)
	}
	for _, name := range sortedNames(e.Attrs) {
		if booleanAttributes[name] {
			r.write(" ")
			r.write(name)
			continue
		}
		r.attr(name, e.Attrs[name])
	}
	r.write(">")

	if voidElements[e.Tag] {
		return
	}
	r.write(html.EscapeString(e.Text))
	for _, k := range e.Kids {
		r.element(k)
	}
	r.write("</")
	r.write(e.Tag)
	r.write(">")
}

func (r *Renderer) attr(name, value string) {
	r.write(" ")
	r.write(name)
	r.write(`="`)
	r.write(html.EscapeString(value))
	r.write(`"`)
}

func sortedNames(a Attrs) []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// RenderToString renders e to a string
func RenderToString(e *Element) (string, error) {
	var buf strings.Builder
	if err := NewRenderer(&buf).Render(e); err != nil {
		return "", err
	}
	return buf.String(), nil
}
