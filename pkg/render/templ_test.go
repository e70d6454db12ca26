package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/vango-dev/waypoint/pkg/vdom"
)

func TestComponentServesThroughTemplHandler(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})
	page := vdom.Html(vdom.Body(vdom.H1(vdom.Text("Not found"))))

	handler := templ.Handler(renderer.Component(page), templ.WithStatus(http.StatusNotFound))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "<!DOCTYPE html>") || !strings.Contains(body, "<h1>Not found</h1>") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestComponentHonoursCancelledContext(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sb strings.Builder
	if err := renderer.Component(vdom.P()).Render(ctx, &sb); err == nil {
		t.Error("expected context error")
	}
	if sb.Len() != 0 {
		t.Errorf("wrote %q after cancellation", sb.String())
	}
}
