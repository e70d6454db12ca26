package router

import (
	"net/url"
	"strings"

	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/vdom"
)

// Link builds a concrete path from a full route pattern, escaping each
// parameter value:
//
//	Link("/blog/:slug", Params{"slug": "hello world"}) // "/blog/hello%20world"
//
// Every :param must be present in params (E108) and satisfy its type. "."
// and ".." are rejected anywhere since canonicalization would resolve them
// away. A missing wildcard value expands to the empty suffix.
func Link(pattern string, params Params) (string, error) {
	segs, err := parsePattern(pattern)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		switch s.kind {
		case segStatic:
			parts = append(parts, s.value)

		case segParam, segTypedParam:
			v, ok := params[s.value]
			if !ok || v == "" {
				return "", errors.New("E108").WithDetailf("%q in %q", s.value, pattern)
			}
			if dotSegment(v) {
				return "", errors.New("E108").WithDetailf("%q in %q is a dot segment", s.value, pattern)
			}
			if err := ValidateParam(v, s.typ); err != nil {
				return "", errors.New("E108").WithDetailf("%q in %q", s.value, pattern).Wrap(err)
			}
			parts = append(parts, url.PathEscape(v))

		case segWildcard:
			for _, p := range strings.Split(params[s.value], "/") {
				if dotSegment(p) {
					return "", errors.New("E108").WithDetailf("%q in %q has a dot segment", s.value, pattern)
				}
				if p != "" {
					parts = append(parts, url.PathEscape(p))
				}
			}
		}
	}
	return "/" + strings.Join(parts, "/"), nil
}

// dotSegment reports whether v would be resolved away by path cleaning.
func dotSegment(v string) bool {
	return v == "." || v == ".."
}

// MustLink is Link that panics on error.
func MustLink(pattern string, params Params) string {
	p, err := Link(pattern, params)
	if err != nil {
		panic(err)
	}
	return p
}

// NavLink creates an anchor the live client intercepts to navigate without a
// full reload.
func NavLink(href string, children ...any) *vdom.VNode {
	args := append([]any{vdom.Href(href), vdom.Data("nav", "true")}, children...)
	return vdom.A(args...)
}

// ActiveLink is a NavLink that marks itself for the current path: an exact
// match gets aria-current="page", and a section prefix match gets the
// "active" class. The root link is only active on "/".
func ActiveLink(current, href string, children ...any) *vdom.VNode {
	args := []any{vdom.Href(href), vdom.Data("nav", "true")}
	switch {
	case current == href:
		args = append(args, vdom.AriaCurrent("page"), vdom.Class("active"))
	case href != "/" && strings.HasPrefix(current, strings.TrimSuffix(href, "/")+"/"):
		args = append(args, vdom.Class("active"))
	}
	return vdom.A(append(args, children...)...)
}
