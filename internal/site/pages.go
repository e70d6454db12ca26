package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/vango-dev/waypoint/pkg/router"
	"github.com/vango-dev/waypoint/pkg/vdom"
)

const pagesRoot = "pages"

//go:embed pages
var pagesFS embed.FS

// pageData is what a page file's template sees.
type pageData struct {
	Path   string
	Params router.Params
}

// loadPage parses a discovered file as an html/template. A file that does
// not parse fails table construction.
func (s *Site) loadPage(file string) (router.PageHandler, error) {
	src, err := fs.ReadFile(s.pages, file)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(file).Option("missingkey=zero").Parse(string(src))
	if err != nil {
		return nil, err
	}
	return func(req *router.Request, _ any) *vdom.VNode {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, pageData{Path: req.Path, Params: req.Params}); err != nil {
			s.logger.Error("page template failed", "file", file, "error", err)
			return vdom.Article(vdom.Role("alert"), vdom.Text(fmt.Sprintf("Page %s could not be rendered.", req.Path)))
		}
		return vdom.Article(vdom.Data("source", file), vdom.Raw(buf.String()))
	}, nil
}
