package router

import (
	"errors"
	"reflect"
	"testing"
	"testing/fstest"

	werrors "github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/vdom"
)

func staticPage(file string) (PageHandler, error) {
	return func(req *Request, data any) *vdom.VNode {
		return vdom.P(vdom.Data("file", file))
	}, nil
}

func TestDiscover(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/index.html":            {Data: []byte("home")},
		"pages/colophon.html":         {Data: []byte("c")},
		"pages/guides/index.html":     {Data: []byte("g")},
		"pages/guides/setup.html":     {Data: []byte("s")},
		"pages/notes/[slug].html":     {Data: []byte("n")},
		"pages/tracks/[id:int].html":  {Data: []byte("t")},
		"pages/files/[...rest].html":  {Data: []byte("f")},
		"pages/_partials/header.html": {Data: []byte("skip")},
		"pages/.DS_Store":             {Data: []byte("skip")},
		"pages/guides/_draft.html":    {Data: []byte("skip")},
	}

	routes, err := Discover(fsys, "pages", staticPage)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	got := map[string]Kind{}
	for _, r := range routes {
		got[r.Path] = r.Kind
		if r.Source == "" {
			t.Errorf("route %q has no source", r.Path)
		}
	}
	want := map[string]Kind{
		"":               KindIndex,
		"colophon":       KindPage,
		"guides":         KindPage,
		"guides/setup":   KindPage,
		"notes/:slug":    KindPage,
		"tracks/:id:int": KindPage,
		"files/*rest":    KindWildcard,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}

	table, err := NewTable(routes...)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	m, ok := table.Match("/notes/first")
	if !ok || m.Params.Get("slug") != "first" {
		t.Errorf("Match(/notes/first) = %v, %v", m, ok)
	}
}

func TestDiscoverBadNames(t *testing.T) {
	for _, name := range []string{"pages/[].html", "pages/[...].html", "pages/a[b].html", "pages/[...x:int].html"} {
		fsys := fstest.MapFS{name: {Data: []byte("x")}}
		_, err := Discover(fsys, "pages", staticPage)
		if !werrors.HasCode(err, "E106") {
			t.Errorf("Discover(%q) error = %v, want E106", name, err)
		}
	}
}

func TestDiscoverLoaderError(t *testing.T) {
	fsys := fstest.MapFS{"pages/about.html": {Data: []byte("x")}}
	boom := errors.New("boom")
	_, err := Discover(fsys, "pages", func(string) (PageHandler, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Discover() error = %v, want wrapped boom", err)
	}
}

func TestDiscoveredRoutesConflictWithTable(t *testing.T) {
	fsys := fstest.MapFS{"pages/about.html": {Data: []byte("x")}}
	routes, err := Discover(fsys, "pages", staticPage)
	if err != nil {
		t.Fatal(err)
	}

	children := append([]Route{Page("about", page("About"))}, routes...)
	_, err = NewTable(Layout("", layout("Shell"), children...))
	if !werrors.HasCode(err, "E101") {
		t.Fatalf("NewTable() error = %v, want E101", err)
	}
	e := werrors.FromError(err, "")
	if e.Location == nil || e.Location.File != "pages/about.html" {
		t.Errorf("Location = %v, want pages/about.html", e.Location)
	}
}
