package server

import "github.com/recera/nodeflow/pkg/scene"

// Layout wraps the editor mount point into a full page
type Layout interface {
	Wrap(mount *scene.Element) *scene.Element
}

// LayoutFunc adapts a function to Layout
type LayoutFunc func(mount *scene.Element) *scene.Element

// Wrap implements Layout
func (f LayoutFunc) Wrap(mount *scene.Element) *scene.Element {
	return f(mount)
}

// DefaultLayout is a bare page with the stylesheet and host script
func DefaultLayout(title string) Layout {
	return LayoutFunc(func(mount *scene.Element) *scene.Element {
		return scene.El("html", "", scene.Attrs{"lang": "en"},
			scene.El("head", "", nil,
				scene.El("meta", "", scene.Attrs{"charset": "utf-8"}),
				scene.TextEl("title", "", nil, title),
				scene.El("link", "", scene.Attrs{"rel": "stylesheet", "href": "/style.css"}),
			),
			scene.El("body", "", nil,
				mount,
				scene.El("script", "", scene.Attrs{"src": "/client.js", "defer": ""}),
			),
		)
	})
}
