package render

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/vango-dev/waypoint/pkg/vdom"
)

// Component adapts a vdom tree to templ.Component. The tree is rendered as a
// document, so an <html> root gets its DOCTYPE.
func (r *Renderer) Component(node *vdom.VNode) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return r.RenderDocument(w, node)
	})
}
