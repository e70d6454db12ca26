package router

import (
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/waypoint/internal/errors"
)

// node is a compiled route.
type node struct {
	route    *Route
	segs     []segment
	pattern  string // full pattern from the root
	key      string // full conflict key from the root
	children []*node
}

func (n *node) isLayout() bool {
	return n.route.Kind == KindLayout
}

// Table is an immutable, validated route table. It is safe for concurrent use.
type Table struct {
	roots  []*node
	leaves []*node
}

// NewTable validates routes and compiles them into a Table.
//
// The following are rejected with coded errors: malformed patterns (E100,
// E105, E107), two siblings with the same path (E101), two wildcards in one
// sibling set (E102), layouts without children (E103) and leaves without a
// page handler (E104). Siblings are compared after flattening pathless
// layouts, and parameter names don't distinguish paths: ":id" and ":slug" at
// the same position collide.
func NewTable(routes ...Route) (*Table, error) {
	c := &compiler{leafKeys: make(map[string]*node)}
	roots, err := c.compileLevel(routes, nil, make(map[string]*node))
	if err != nil {
		return nil, err
	}
	return &Table{roots: roots, leaves: c.leaves}, nil
}

// MustTable is NewTable that panics on error. Intended for package-level
// tables and tests.
func MustTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

type compiler struct {
	leafKeys map[string]*node
	leaves   []*node
}

func (c *compiler) compileLevel(routes []Route, prefix []segment, siblings map[string]*node) ([]*node, error) {
	nodes := make([]*node, 0, len(routes))
	for i := range routes {
		n, err := c.compile(routes[i], prefix, siblings)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (c *compiler) compile(r Route, prefix []segment, siblings map[string]*node) (*node, error) {
	segs, err := parsePattern(r.Path)
	if err != nil {
		return nil, locate(err, r)
	}

	full := make([]segment, 0, len(prefix)+len(segs))
	full = append(append(full, prefix...), segs...)
	n := &node{
		route:   &r,
		segs:    segs,
		pattern: joinSegments(full),
		key:     joinKeys(full),
	}

	switch r.Kind {
	case KindLayout:
		if len(r.Children) == 0 {
			return nil, locate(errors.New("E103").WithDetailf("%q", n.pattern), r)
		}
		if len(segs) > 0 && segs[len(segs)-1].kind == segWildcard {
			return nil, locate(errors.New("E100").WithDetailf("layout %q cannot end in a wildcard", n.pattern), r)
		}
		if r.Name == "" {
			r.Name = "layout " + n.pattern
		}
		childSiblings := siblings
		if len(segs) > 0 {
			if err := claim(siblings, joinKeys(segs), n); err != nil {
				return nil, err
			}
			childSiblings = make(map[string]*node)
		}
		n.children, err = c.compileLevel(r.Children, full, childSiblings)
		if err != nil {
			return nil, err
		}

	case KindIndex:
		if len(segs) > 0 {
			return nil, locate(errors.New("E100").WithDetailf("index route with path %q", r.Path), r)
		}
		fallthrough

	default:
		if r.Page == nil {
			return nil, locate(errors.New("E104").WithDetailf("%q", n.pattern), r)
		}
		if len(segs) == 0 && r.Kind != KindIndex {
			r.Kind = KindIndex
		}
		if len(segs) > 0 && segs[len(segs)-1].kind == segWildcard {
			r.Kind = KindWildcard
		}
		if r.Name == "" {
			r.Name = n.pattern
		}
		if err := claim(siblings, joinKeys(segs), n); err != nil {
			return nil, err
		}
		if prev, ok := c.leafKeys[n.key]; ok {
			return nil, duplicate(prev, n)
		}
		c.leafKeys[n.key] = n
		c.leaves = append(c.leaves, n)
	}
	return n, nil
}

// claim registers a sibling key, reporting a collision with an earlier sibling.
func claim(siblings map[string]*node, key string, n *node) error {
	if prev, ok := siblings[key]; ok {
		return duplicate(prev, n)
	}
	siblings[key] = n
	return nil
}

func duplicate(prev, n *node) error {
	code := "E101"
	if prev.route.Kind == KindWildcard && n.route.Kind == KindWildcard {
		code = "E102"
	}
	return locate(errors.New(code).WithDetailf("%q conflicts with %q", n.pattern, prev.pattern), *n.route)
}

func locate(err error, r Route) error {
	if r.Source == "" {
		return err
	}
	if e, ok := err.(*errors.Error); ok {
		return e.WithLocation(r.Source, 0)
	}
	return err
}

// Leaf describes one matchable route of a table.
type Leaf struct {
	Name      string
	Kind      Kind
	Pattern   string
	Layouts   []string
	HasLoader bool
	Source    string
}

// Leaves lists every leaf in declaration order.
func (t *Table) Leaves() []Leaf {
	out := make([]Leaf, 0, len(t.leaves))
	var walk func(nodes []*node, layouts []string)
	walk = func(nodes []*node, layouts []string) {
		for _, n := range nodes {
			if n.isLayout() {
				next := layouts
				if n.route.Layout != nil {
					next = append(append([]string(nil), layouts...), n.route.Name)
				}
				walk(n.children, next)
				continue
			}
			out = append(out, Leaf{
				Name:      n.route.Name,
				Kind:      n.route.Kind,
				Pattern:   n.pattern,
				Layouts:   layouts,
				HasLoader: n.route.Loader != nil,
				Source:    n.route.Source,
			})
		}
	}
	walk(t.roots, nil)
	return out
}

// Describe writes the table as an indented tree.
func (t *Table) Describe(w io.Writer) error {
	var walk func(nodes []*node, depth int) error
	walk = func(nodes []*node, depth int) error {
		for _, n := range nodes {
			path := n.route.Path
			if path == "" {
				path = `""`
			}
			line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", depth), n.route.Kind, path)
			if n.route.Name != "" && n.route.Name != n.pattern {
				line += "  [" + n.route.Name + "]"
			}
			if n.route.Loader != nil {
				line += "  (loader)"
			}
			if n.route.Source != "" {
				line += "  <" + n.route.Source + ">"
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
			if err := walk(n.children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t.roots, 0)
}
