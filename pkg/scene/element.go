// Package scene turns editor state into a keyed element tree, renders it to
// HTML and diffs successive trees into patches a host page can apply.
package scene

// KeyAttr carries an element's key in rendered HTML
const KeyAttr = "data-k"

// Attrs are element attributes. Boolean attributes (checked, selected, ...)
// are present when set, whatever their value.
type Attrs map[string]string

// Element is one node of the scene tree. Every element has a key unique
// within the tree; patches address elements by key. An element holds either
// Text or Kids, not both.
type Element struct {
	Tag   string
	Key   string
	Attrs Attrs
	Text  string
	Kids  []*Element
}

// El builds an element
func El(tag, key string, attrs Attrs, kids ...*Element) *Element {
	e := &Element{Tag: tag, Key: key, Attrs: attrs}
	for _, k := range kids {
		if k != nil {
			e.Kids = append(e.Kids, k)
		}
	}
	return e
}

// TextEl builds an element whose only content is text
func TextEl(tag, key string, attrs Attrs, text string) *Element {
	return &Element{Tag: tag, Key: key, Attrs: attrs, Text: text}
}

// Find returns the element with the given key in the subtree, or nil
func (e *Element) Find(key string) *Element {
	if e == nil {
		return nil
	}
	if e.Key == key {
		return e
	}
	for _, k := range e.Kids {
		if f := k.Find(key); f != nil {
			return f
		}
	}
	return nil
}

// Walk visits e and its descendants depth first
func (e *Element) Walk(fn func(*Element)) {
	if e == nil {
		return
	}
	fn(e)
	for _, k := range e.Kids {
		k.Walk(fn)
	}
}
