package router

import (
	"testing"

	"github.com/vango-dev/waypoint/internal/errors"
)

func TestLink(t *testing.T) {
	tests := []struct {
		pattern string
		params  Params
		want    string
	}{
		{"/", nil, "/"},
		{"/about", nil, "/about"},
		{"/blog/:slug", Params{"slug": "hello"}, "/blog/hello"},
		{"/blog/:slug", Params{"slug": "hello world"}, "/blog/hello%20world"},
		{"/blog/:slug", Params{"slug": "a/b"}, "/blog/a%2Fb"},
		{"/blog/:slug", Params{"slug": "..."}, "/blog/..."},
		{"/lessons/:id:int", Params{"id": "12"}, "/lessons/12"},
		{"/docs/*rest", Params{"rest": "a/b c"}, "/docs/a/b%20c"},
		{"/docs/*rest", nil, "/docs"},
		{"/*", Params{"*": "x/y"}, "/x/y"},
	}

	for _, tt := range tests {
		got, err := Link(tt.pattern, tt.params)
		if err != nil {
			t.Errorf("Link(%q, %v) error = %v", tt.pattern, tt.params, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Link(%q, %v) = %q, want %q", tt.pattern, tt.params, got, tt.want)
		}
	}
}

func TestLinkRoundTripsThroughMatch(t *testing.T) {
	table := siteTable(t)
	href := MustLink("/blog/:slug", Params{"slug": "hello world"})

	m, ok := table.Match(href)
	if !ok {
		t.Fatalf("Match(%q) found nothing", href)
	}
	if m.Params.Get("slug") != "hello world" {
		t.Errorf("slug = %q, want %q", m.Params.Get("slug"), "hello world")
	}
}

func TestLinkErrors(t *testing.T) {
	tests := []struct {
		pattern string
		params  Params
		code    string
	}{
		{"/blog/:slug", nil, "E108"},
		{"/blog/:slug", Params{"slug": ""}, "E108"},
		{"/lessons/:id:int", Params{"id": "abc"}, "E108"},
		{"/blog/:slug", Params{"slug": ".."}, "E108"},
		{"/blog/:slug", Params{"slug": "."}, "E108"},
		{"/docs/*rest", Params{"rest": "a/../b"}, "E108"},
		{"/docs/*rest", Params{"rest": "./a"}, "E108"},
		{"/x/*/y", nil, "E105"},
	}
	for _, tt := range tests {
		_, err := Link(tt.pattern, tt.params)
		if !errors.HasCode(err, tt.code) {
			t.Errorf("Link(%q) error = %v, want %s", tt.pattern, err, tt.code)
		}
	}
}

func TestActiveLink(t *testing.T) {
	tests := []struct {
		current, href string
		class         any
		ariaCurrent   any
	}{
		{"/blog", "/blog", "active", "page"},
		{"/blog/post", "/blog", "active", nil},
		{"/blogger", "/blog", nil, nil},
		{"/about", "/", nil, nil},
		{"/", "/", "active", "page"},
	}
	for _, tt := range tests {
		a := ActiveLink(tt.current, tt.href)
		if a.Attr("data-nav") != "true" {
			t.Errorf("ActiveLink(%q, %q) missing data-nav", tt.current, tt.href)
		}
		if got := a.Attr("class"); got != tt.class {
			t.Errorf("ActiveLink(%q, %q) class = %v, want %v", tt.current, tt.href, got, tt.class)
		}
		if got := a.Attr("aria-current"); got != tt.ariaCurrent {
			t.Errorf("ActiveLink(%q, %q) aria-current = %v, want %v", tt.current, tt.href, got, tt.ariaCurrent)
		}
	}
}
