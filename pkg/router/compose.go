package router

import "github.com/vango-dev/waypoint/pkg/vdom"

// Compose wraps leaf in the layouts of a match, outer to inner, so the
// outermost layout ends up at the root of the returned tree:
//
//	layouts [A, B], leaf P  =>  A(B(P))
func Compose(req *Request, layouts []MatchedLayout, leaf *vdom.VNode) *vdom.VNode {
	node := leaf
	for i := len(layouts) - 1; i >= 0; i-- {
		if layouts[i].Handler == nil {
			continue
		}
		node = layouts[i].Handler(req, node)
	}
	return node
}

// RenderPage renders the matched leaf with data and composes it into the
// layout chain.
func (m *Match) RenderPage(req *Request, data any) *vdom.VNode {
	return Compose(req, m.Layouts, m.Route.Page(req, data))
}
