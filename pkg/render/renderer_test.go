package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vango-dev/waypoint/pkg/vdom"
)

func TestRenderText(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(vdom.Text("Hello, World!"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "Hello, World!" {
		t.Errorf("got %q, want %q", html, "Hello, World!")
	}
}

func TestRenderTextEscaping(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(vdom.Text("<script>alert('xss')</script>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;"
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderElement(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	node := vdom.Div(vdom.Class("container"),
		vdom.H1(vdom.Text("Title")),
		vdom.P(vdom.Text("Content")),
	)
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<div class="container"><h1>Title</h1><p>Content</p></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderAttributesSortedAndEscaped(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	node := vdom.A(
		vdom.Href(`/blog?q="x"&y=1`),
		vdom.Data("nav", "true"),
		vdom.ID("link"),
		vdom.Attr{Key: "_internal", Value: "secret"},
		vdom.Attr{Key: "title", Value: nil},
		vdom.Text("go"),
	)
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<a data-nav="true" href="/blog?q=&quot;x&quot;&amp;y=1" id="link">go</a>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderBooleanAndVoid(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	node := vdom.Div(
		vdom.Hidden(),
		vdom.Br(),
		vdom.Script(vdom.Src("/app.js"), vdom.Defer()),
		vdom.Button(vdom.Attr{Key: "disabled", Value: false}),
	)
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<div hidden><br><script defer src="/app.js"></script><button></button></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderFragmentComponentRaw(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	comp := vdom.Func(func() *vdom.VNode { return vdom.Em(vdom.Text("c")) })
	node := vdom.Fragment(
		vdom.Text("a"),
		vdom.Raw("<b>raw</b>"),
		comp,
	)
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "a<b>raw</b><em>c</em>" {
		t.Errorf("got %q", html)
	}
}

func TestRenderNil(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})
	html, err := renderer.RenderToString(nil)
	if err != nil || html != "" {
		t.Errorf("RenderToString(nil) = %q, %v", html, err)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})
	_, err := renderer.RenderToString(&vdom.VNode{Kind: vdom.VKind(42)})
	if err == nil {
		t.Error("expected error for unknown node kind")
	}
}

func TestRenderDocument(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	var buf bytes.Buffer
	doc := vdom.Html(vdom.Lang("en"), vdom.Body(vdom.Text("hi")))
	if err := renderer.RenderDocument(&buf, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<!DOCTYPE html><html lang="en"><body>hi</body></html>`
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := renderer.RenderDocument(&buf, vdom.P(vdom.Text("x"))); err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(buf.String(), "<!DOCTYPE") {
		t.Error("fragments must not get a DOCTYPE")
	}
}

func TestRenderPretty(t *testing.T) {
	renderer := NewRenderer(RendererConfig{Pretty: true})

	node := vdom.Ul(vdom.Li(vdom.Span(vdom.Text("x"))))
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<ul>\n  <li>\n    <span>x</span>\n  </li>\n</ul>\n"
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}
