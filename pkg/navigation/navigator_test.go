package navigation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	werrors "github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/resource"
	"github.com/vango-dev/waypoint/pkg/router"
	"github.com/vango-dev/waypoint/pkg/vdom"
)

type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	outcomes []string
	stale    []string
}

func (o *recordingObserver) NavigationStarted(route string) {
	o.mu.Lock()
	o.started = append(o.started, route)
	o.mu.Unlock()
}

func (o *recordingObserver) LoaderSettled(route, outcome string, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, route+":"+outcome)
	o.mu.Unlock()
}

func (o *recordingObserver) StaleDiscarded(route string) {
	o.mu.Lock()
	o.stale = append(o.stale, route)
	o.mu.Unlock()
}

func (o *recordingObserver) staleCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.stale)
}

func textPage(req *router.Request, data any) *vdom.VNode {
	s, _ := data.(string)
	return vdom.P(vdom.Data("page", req.Pattern), vdom.Text(s))
}

func shell(req *router.Request, children router.Slot) *vdom.VNode {
	return vdom.Div(vdom.Data("layout", "shell"), children)
}

// gate is a loader that blocks until released and reports its context.
type gate struct {
	release chan string
	started chan context.Context
}

func newGate() *gate {
	return &gate{release: make(chan string, 1), started: make(chan context.Context, 1)}
}

func (g *gate) load(ctx context.Context, req *router.Request) (any, error) {
	g.started <- ctx
	// Deliberately ignores ctx so the stale result really arrives.
	return <-g.release, nil
}

func newTable(t *testing.T, a, b router.Loader) *router.Table {
	t.Helper()
	return router.MustTable(
		router.Layout("", shell,
			router.Index(textPage),
			router.Page("a", textPage, router.WithLoader(a)),
			router.Page("b", textPage, router.WithLoader(b)),
			router.Page("fail", textPage,
				router.WithLoader(func(context.Context, *router.Request) (any, error) {
					return nil, errors.New("db down")
				}),
				router.WithFallback(func(req *router.Request, err error) *vdom.VNode {
					return vdom.P(vdom.Data("fallback", "fail"), vdom.Text(err.Error()))
				}),
			),
			router.Page("panic", textPage, router.WithLoader(func(context.Context, *router.Request) (any, error) {
				panic("bad loader")
			})),
			router.Page("slow", textPage, router.WithLoader(func(ctx context.Context, _ *router.Request) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})),
		),
	)
}

func immediate(v string) router.Loader {
	return func(context.Context, *router.Request) (any, error) { return v, nil }
}

func TestNavigateWithoutLoader(t *testing.T) {
	nav := New(context.Background(), newTable(t, immediate("a"), immediate("b")))
	view, err := nav.Navigate("/")
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != StatusReady || view.Generation != 1 {
		t.Errorf("view = %+v, want ready generation 1", view)
	}
	if nav.Current().Generation != 1 {
		t.Errorf("Current().Generation = %d", nav.Current().Generation)
	}
}

func TestNavigateNotFound(t *testing.T) {
	nav := New(context.Background(), newTable(t, immediate("a"), immediate("b")))
	view, err := nav.Navigate("/nowhere?x=1")
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != StatusNotFound || view.Match != nil {
		t.Errorf("view = %+v, want not found", view)
	}
	if view.URL() != "/nowhere?x=1" {
		t.Errorf("URL() = %q", view.URL())
	}
	node := nav.Render(view)
	if vdom.TextContent(node) == "" {
		t.Error("not-found view rendered nothing")
	}
}

func TestNavigateInvalidPath(t *testing.T) {
	nav := New(context.Background(), newTable(t, immediate("a"), immediate("b")))
	nav.Navigate("/")

	_, err := nav.Navigate(`/a\b`)
	if !werrors.HasCode(err, "E200") {
		t.Fatalf("Navigate() error = %v, want E200", err)
	}
	if nav.Generation() != 1 {
		t.Errorf("Generation() = %d, an invalid path must not start a navigation", nav.Generation())
	}
}

func TestNavigateAndWait(t *testing.T) {
	nav := New(context.Background(), newTable(t, immediate("alpha"), immediate("b")))
	view, err := nav.NavigateAndWait(context.Background(), "/a?q=1")
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != StatusReady || view.Data != "alpha" {
		t.Fatalf("view = %+v, want ready alpha", view)
	}
	if view.Request.Query.Get("q") != "1" {
		t.Errorf("query not carried: %v", view.Request.Query)
	}

	root := nav.Render(view)
	if root.Attr("data-layout") != "shell" {
		t.Fatalf("root = %v, want the shell layout", root.Attr("data-layout"))
	}
	if vdom.TextContent(root) != "alpha" {
		t.Errorf("TextContent = %q, want alpha", vdom.TextContent(root))
	}
}

func TestPendingRendersPlaceholderInsideLayouts(t *testing.T) {
	g := newGate()
	nav := New(context.Background(), newTable(t, g.load, immediate("b")))
	defer nav.Close()

	view, err := nav.Navigate("/a")
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != StatusPending {
		t.Fatalf("Status = %v, want pending", view.Status)
	}
	root := nav.Render(view)
	if root.Attr("data-layout") != "shell" {
		t.Fatal("layout chrome missing while pending")
	}
	if vdom.FindByAttr(root, "aria-busy", true) == nil {
		t.Error("placeholder not rendered")
	}
	g.release <- "done"
}

func TestStaleLoaderResultIsDiscarded(t *testing.T) {
	ga, gb := newGate(), newGate()
	obs := &recordingObserver{}
	nav := New(context.Background(), newTable(t, ga.load, gb.load), WithObserver(obs))

	changes := make(chan View, 4)
	nav.OnChange(func(v View) { changes <- v })

	viewA, _ := nav.Navigate("/a")
	ctxA := <-ga.started

	viewB, _ := nav.Navigate("/b")
	<-gb.started

	select {
	case <-ctxA.Done():
	case <-time.After(time.Second):
		t.Fatal("A's loader context was not cancelled by navigating to B")
	}

	// A settles late; it must not touch B's view.
	ga.release <- "from A"
	deadline := time.After(time.Second)
	for obs.staleCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("stale result was not discarded")
		case <-time.After(time.Millisecond):
		}
	}
	if cur := nav.Current(); cur.Generation != viewB.Generation || cur.Status != StatusPending || cur.Data != nil {
		t.Fatalf("Current() = %+v after stale settle, want B pending", cur)
	}

	gb.release <- "from B"
	select {
	case v := <-changes:
		if v.Generation != viewB.Generation || v.Data != "from B" {
			t.Errorf("change = %+v, want B's data", v)
		}
		if v.Generation == viewA.Generation {
			t.Error("A's generation was delivered")
		}
	case <-time.After(time.Second):
		t.Fatal("B never settled")
	}
}

func TestLoaderErrorRendersFallback(t *testing.T) {
	obs := &recordingObserver{}
	nav := New(context.Background(), newTable(t, immediate("a"), immediate("b")), WithObserver(obs))

	view, err := nav.NavigateAndWait(context.Background(), "/fail")
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != StatusError || !werrors.HasCode(view.Err, "E201") {
		t.Fatalf("view = %+v, want E201 error", view)
	}

	root := nav.Render(view)
	if root.Attr("data-layout") != "shell" {
		t.Fatal("layout chrome lost on loader failure")
	}
	if vdom.FindByAttr(root, "data-fallback", "fail") == nil {
		t.Error("route fallback not rendered")
	}
	if len(obs.outcomes) != 1 || obs.outcomes[0] != "/fail:error" {
		t.Errorf("outcomes = %v", obs.outcomes)
	}
}

func TestLoaderPanicIsRecovered(t *testing.T) {
	nav := New(context.Background(), newTable(t, immediate("a"), immediate("b")))
	view, err := nav.NavigateAndWait(context.Background(), "/panic")
	if err != nil {
		t.Fatal(err)
	}
	if !werrors.HasCode(view.Err, "E202") {
		t.Fatalf("Err = %v, want E202", view.Err)
	}
	if vdom.FindByAttr(nav.Render(view), "role", "alert") == nil {
		t.Error("default fallback not rendered")
	}
}

func TestLoaderTimeout(t *testing.T) {
	nav := New(context.Background(), newTable(t, immediate("a"), immediate("b")),
		WithLoaderTimeout(10*time.Millisecond))
	view, err := nav.NavigateAndWait(context.Background(), "/slow")
	if err != nil {
		t.Fatal(err)
	}
	if !werrors.HasCode(view.Err, "E203") {
		t.Fatalf("Err = %v, want E203", view.Err)
	}
}

func TestCloseCancelsLoader(t *testing.T) {
	g := newGate()
	nav := New(context.Background(), newTable(t, g.load, immediate("b")))
	nav.Navigate("/a")
	ctx := <-g.started

	nav.Close()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("Close did not cancel the loader")
	}
	g.release <- "late"
}

func TestNavigateAndWaitAfterClose(t *testing.T) {
	g := newGate()
	nav := New(context.Background(), newTable(t, g.load, immediate("b")))

	type result struct {
		view View
		err  error
	}
	done := make(chan result, 1)
	go func() {
		v, err := nav.NavigateAndWait(context.Background(), "/a")
		done <- result{v, err}
	}()
	<-g.started

	nav.Close()
	var got result
	select {
	case got = <-done:
	case <-time.After(time.Second):
		t.Fatal("NavigateAndWait did not return after Close")
	}
	g.release <- "late"

	if got.err == nil {
		t.Fatalf("err = nil, view = %+v", got.view)
	}
	if !werrors.HasCode(got.err, "E201") {
		t.Errorf("err = %v, want E201", got.err)
	}
	if !errors.Is(got.err, resource.ErrCanceled) {
		t.Errorf("err = %v, want it to wrap resource.ErrCanceled", got.err)
	}
	if got.view.Status.Final() {
		t.Errorf("view status = %v, want the unsettled view", got.view.Status)
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{
		StatusPending:  "pending",
		StatusReady:    "ready",
		StatusError:    "error",
		StatusNotFound: "not_found",
	} {
		if s.String() != want {
			t.Errorf("String() = %q, want %q", s.String(), want)
		}
	}
	if StatusPending.Final() || !StatusReady.Final() {
		t.Error("Final() is wrong")
	}
}
