// Package render turns vdom trees into HTML.
//
// Rendering is purely a function of the tree: text and attribute values are
// escaped, void elements get no closing tag, boolean attributes render as a
// bare name, and attributes are emitted in sorted order so output is stable
// across runs (the live channel relies on that to skip unchanged frames).
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(node)
//
// A tree whose root is <html> is written as a full document with a leading
// DOCTYPE by RenderDocument. Component adapts a tree to templ.Component so
// pages can be served with templ.Handler or embedded in templ templates.
package render
