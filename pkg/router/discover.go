package router

import (
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/vango-dev/waypoint/internal/errors"
)

// PageLoader turns a discovered file into a page handler.
type PageLoader func(file string) (PageHandler, error)

var bracketRe = regexp.MustCompile(`^\[(\.\.\.)?(\w*)(?::(\w+))?\]$`)

// Discover walks root in fsys and derives one leaf route per file:
//
//	index.html            -> index route of the tree
//	about.html            -> "about"
//	guides/index.html     -> "guides"
//	notes/[slug].html     -> "notes/:slug"
//	lessons/[id:int].html -> "lessons/:id:int"
//	docs/[...rest].html   -> "docs/*rest"
//
// Files and directories starting with "_" or "." are skipped. Routes carry
// their file as Source so table conflicts point at it. page is called for
// every file, in walk order.
func Discover(fsys fs.FS, root string, page PageLoader) ([]Route, error) {
	var routes []Route
	err := fs.WalkDir(fsys, root, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if file != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(file, root), "/")
		routePath, err := filePathToRoute(rel)
		if err != nil {
			return errors.FromError(err, "E106").WithLocation(file, 0)
		}

		handler, err := page(file)
		if err != nil {
			return errors.New("E106").WithDetail("loading page").WithLocation(file, 0).Wrap(err)
		}

		if routePath == "" {
			routes = append(routes, Index(handler, WithSource(file)))
		} else {
			routes = append(routes, Page(routePath, handler, WithSource(file)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return routes, nil
}

// filePathToRoute converts "notes/[slug].html" to "notes/:slug".
func filePathToRoute(rel string) (string, error) {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	parts := strings.Split(rel, "/")
	if parts[len(parts)-1] == "index" {
		parts = parts[:len(parts)-1]
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if !strings.ContainsAny(p, "[]") {
			if p == "" || strings.ContainsAny(p, ":*?#") {
				return "", errors.New("E106").WithDetailf("%q", rel)
			}
			out = append(out, p)
			continue
		}

		m := bracketRe.FindStringSubmatch(p)
		if m == nil || m[2] == "" {
			return "", errors.New("E106").WithDetailf("%q", rel)
		}
		switch {
		case m[1] != "":
			if m[3] != "" {
				return "", errors.New("E106").WithDetailf("typed catch-all in %q", rel)
			}
			out = append(out, "*"+m[2])
		case m[3] != "":
			out = append(out, ":"+m[2]+":"+m[3])
		default:
			out = append(out, ":"+m[2])
		}
	}
	return strings.Join(out, "/"), nil
}
