package router

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/vango-dev/waypoint/pkg/vdom"
)

// ErrNotFound is returned by loaders whose item doesn't exist. Servers
// answer such navigations with 404 while still rendering the fallback.
var ErrNotFound = errors.New("not found")

// Slot is the rendered content a layout wraps: the leaf page or the next
// layout in the chain.
type Slot = *vdom.VNode

// Params holds the decoded path parameters of a match.
type Params map[string]string

// Get returns the named parameter or "".
func (p Params) Get(name string) string {
	return p[name]
}

// Int parses the named parameter as an int.
func (p Params) Int(name string) (int, error) {
	return strconv.Atoi(p[name])
}

// Request describes the navigation being rendered.
type Request struct {
	// Path is the canonical requested path.
	Path string

	// Query holds the parsed query string.
	Query url.Values

	// Params are the decoded path parameters.
	Params Params

	// Pattern is the full pattern of the matched leaf (e.g. "/blog/:slug").
	Pattern string
}

// PageHandler renders a leaf route. data is the loader result, or nil when
// the route has no loader.
type PageHandler func(req *Request, data any) *vdom.VNode

// LayoutHandler wraps nested content in shared chrome.
type LayoutHandler func(req *Request, children Slot) *vdom.VNode

// Loader produces the data a page renders. ctx is cancelled as soon as the
// navigation that started the loader is superseded.
type Loader func(ctx context.Context, req *Request) (any, error)

// FallbackHandler renders in place of a page whose loader failed.
type FallbackHandler func(req *Request, err error) *vdom.VNode

// PlaceholderHandler renders in place of a page while its loader is pending.
type PlaceholderHandler func(req *Request) *vdom.VNode

// Kind tags a Route entry.
type Kind uint8

const (
	// KindPage is a leaf bound to a non-empty path.
	KindPage Kind = iota
	// KindIndex is a leaf matching its parent's path exactly.
	KindIndex
	// KindLayout wraps its children; it never matches on its own.
	KindLayout
	// KindWildcard is a leaf whose pattern ends in a wildcard segment.
	KindWildcard
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindIndex:
		return "index"
	case KindLayout:
		return "layout"
	case KindWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Route is one node of a route table.
type Route struct {
	Kind Kind

	// Path is the pattern relative to the parent route.
	Path string

	// Name identifies the route in logs, metrics and the routes listing.
	// Defaults to the full pattern.
	Name string

	Page        PageHandler
	Layout      LayoutHandler
	Loader      Loader
	Fallback    FallbackHandler
	Placeholder PlaceholderHandler

	// Children are the nested routes of a layout, in declaration order.
	Children []Route

	// Source is the file a discovered route came from.
	Source string

	// Status is the HTTP status a server answers with when the page
	// renders. Zero means 200.
	Status int
}

// MatchedLayout is one layout on the path to a matched leaf.
type MatchedLayout struct {
	Name    string
	Pattern string
	Handler LayoutHandler
}

// Match is the result of matching a path: the layout chain, outer to inner,
// and the leaf route.
type Match struct {
	Layouts []MatchedLayout
	Route   *Route
	Params  Params
	Pattern string
	Path    string
}

// Chain lists layout names outer to inner followed by the leaf name.
func (m *Match) Chain() []string {
	chain := make([]string, 0, len(m.Layouts)+1)
	for _, l := range m.Layouts {
		chain = append(chain, l.Name)
	}
	return append(chain, m.Route.Name)
}

// Request builds the Request handed to handlers and loaders.
func (m *Match) Request(query url.Values) *Request {
	if query == nil {
		query = url.Values{}
	}
	return &Request{
		Path:    m.Path,
		Query:   query,
		Params:  m.Params,
		Pattern: m.Pattern,
	}
}
