package navigation

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/resource"
	"github.com/vango-dev/waypoint/pkg/routepath"
	"github.com/vango-dev/waypoint/pkg/router"
	"github.com/vango-dev/waypoint/pkg/vdom"
)

const tracerName = "github.com/vango-dev/waypoint/pkg/navigation"

// ErrSuperseded is returned by NavigateAndWait when another navigation
// replaced the one being waited on.
var ErrSuperseded = stderrors.New("navigation superseded")

// Option configures a Navigator.
type Option func(*Navigator)

// WithLoaderTimeout bounds every loader. Zero means no limit.
func WithLoaderTimeout(d time.Duration) Option {
	return func(n *Navigator) { n.timeout = d }
}

// WithObserver reports navigation events to o.
func WithObserver(o Observer) Option {
	return func(n *Navigator) { n.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Navigator) { n.logger = l }
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(n *Navigator) { n.tracer = t }
}

// WithNotFound sets the page rendered when nothing matches.
func WithNotFound(p router.PageHandler) Option {
	return func(n *Navigator) { n.notFound = p }
}

// Navigator tracks the current view of one session. It is safe for
// concurrent use; navigations are serialized.
type Navigator struct {
	table *router.Table
	ctx   context.Context

	timeout  time.Duration
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer
	notFound router.PageHandler

	mu       sync.Mutex
	gen      uint64
	view     View
	loader   *resource.Resource[any]
	onChange func(View)
	closed   bool
}

// New creates a Navigator. ctx bounds every loader it starts; cancelling it
// has the same effect as Close.
func New(ctx context.Context, table *router.Table, opts ...Option) *Navigator {
	n := &Navigator{
		table:    table,
		ctx:      ctx,
		observer: nopObserver{},
		logger:   slog.Default(),
		notFound: defaultNotFound,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.tracer == nil {
		n.tracer = otel.Tracer(tracerName)
	}
	n.logger = n.logger.With("component", "navigation")
	return n
}

// OnChange registers fn to receive every view that settles after Navigate
// returned it as pending. fn may be called for a generation that has just
// been superseded; compare View.Generation to drop such views.
func (n *Navigator) OnChange(fn func(View)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Current returns the latest view.
func (n *Navigator) Current() View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view
}

// Generation returns the current navigation generation.
func (n *Navigator) Generation() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gen
}

// Navigate switches to target, a path with an optional query string. The
// returned view is final for not-found routes and routes without a loader;
// otherwise it is pending and the settled view is delivered to OnChange.
// An invalid path returns an E200 error and leaves the current view alone.
func (n *Navigator) Navigate(target string) (View, error) {
	view, _, err := n.navigate(target)
	return view, err
}

// NavigateAndWait is Navigate followed by waiting for the loader, for
// server-side rendering. It returns ErrSuperseded if another navigation
// replaced this one first, and an E201 error if Close canceled the loader.
func (n *Navigator) NavigateAndWait(ctx context.Context, target string) (View, error) {
	view, res, err := n.navigate(target)
	if err != nil || view.Status.Final() {
		return view, err
	}

	snap, err := res.Wait(ctx)
	if err != nil {
		return view, err
	}
	settled, applied, current := n.settle(view.Generation, snap)
	if !current {
		return view, ErrSuperseded
	}
	if !settled.Status.Final() {
		// Close canceled the loader before it settled.
		cause := snap.Err
		if cause == nil {
			cause = context.Canceled
		}
		return settled, errors.New("E201").WithDetail("loader canceled").Wrap(cause)
	}
	if applied {
		n.report(settled, time.Time{})
	}
	return settled, nil
}

func (n *Navigator) navigate(target string) (View, *resource.Resource[any], error) {
	rawPath, rawQuery, _ := strings.Cut(target, "?")
	if i := strings.IndexByte(rawQuery, '#'); i >= 0 {
		rawQuery = rawQuery[:i]
	}
	res, err := routepath.Canonicalize(rawPath)
	if err != nil {
		return View{}, nil, errors.New("E200").WithDetailf("%q", target).Wrap(err)
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return View{}, nil, errors.New("E200").WithDetailf("bad query in %q", target).Wrap(err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.loader != nil {
		n.loader.Cancel()
		n.loader = nil
	}
	n.gen++
	gen := n.gen

	_, span := n.tracer.Start(n.ctx, "waypoint.navigate", trace.WithAttributes(
		attribute.String("waypoint.path", res.Path),
		attribute.Int64("waypoint.generation", int64(gen)),
	))
	defer span.End()

	view := View{Generation: gen, Path: res.Path, Query: query}
	m, ok := n.table.Match(res.Path)
	if !ok {
		view.Status = StatusNotFound
		n.view = view
		span.SetAttributes(attribute.String("waypoint.status", view.Status.String()))
		n.observer.NavigationStarted("")
		n.logger.Debug("navigate", "path", res.Path, "generation", gen, "status", view.Status)
		return view, nil, nil
	}

	req := m.Request(query)
	view.Match = m
	view.Request = req
	route := m.Route.Name
	span.SetAttributes(attribute.String("waypoint.route", route))
	n.observer.NavigationStarted(route)

	if m.Route.Loader == nil || n.closed {
		view.Status = StatusReady
		if n.closed {
			view.Status = StatusError
			view.Err = errors.New("E201").Wrap(context.Canceled)
		}
		n.view = view
		n.logger.Debug("navigate", "path", res.Path, "route", route, "generation", gen, "status", view.Status)
		return view, nil, nil
	}

	view.Status = StatusPending
	n.view = view

	loader := m.Route.Loader
	started := time.Now()
	r := resource.New(func(ctx context.Context) (any, error) {
		ctx, span := n.tracer.Start(ctx, "waypoint.loader", trace.WithAttributes(
			attribute.String("waypoint.route", route),
			attribute.Int64("waypoint.generation", int64(gen)),
		))
		defer span.End()
		data, err := loader(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return data, err
	}).
		Timeout(n.timeout).
		OnStale(func(uint64) { n.discard(route, gen) }).
		OnSettle(func(snap resource.Snapshot[any]) {
			view, applied, current := n.settle(gen, snap)
			if !current {
				n.discard(route, gen)
				return
			}
			if applied {
				n.report(view, started)
			}
		})
	n.loader = r
	r.Start(n.ctx)

	n.logger.Debug("navigate", "path", res.Path, "route", route, "generation", gen, "status", view.Status)
	return view, r, nil
}

// settle applies a loader snapshot to the view of generation gen. applied
// reports whether this call moved the view out of pending; current reports
// whether gen is still the live generation.
func (n *Navigator) settle(gen uint64, snap resource.Snapshot[any]) (view View, applied, current bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if gen != n.gen {
		return View{}, false, false
	}
	if n.view.Status.Final() {
		return n.view, false, true
	}
	switch snap.State {
	case resource.Ready:
		n.view.Status = StatusReady
		n.view.Data = snap.Data
	case resource.Error:
		n.view.Status = StatusError
		n.view.Err = loaderError(snap.Err)
	default:
		return n.view, false, true
	}
	return n.view, true, true
}

// report publishes a view that just left pending.
func (n *Navigator) report(view View, started time.Time) {
	route := view.RouteName()
	var d time.Duration
	if !started.IsZero() {
		d = time.Since(started)
	}
	n.observer.LoaderSettled(route, outcome(view.Err), d)
	if view.Status == StatusError {
		n.logger.Warn("loader failed", "path", view.Path, "route", route, "generation", view.Generation, "error", view.Err)
	} else {
		n.logger.Debug("loader settled", "path", view.Path, "route", route, "generation", view.Generation, "duration", d)
	}

	n.mu.Lock()
	fn := n.onChange
	n.mu.Unlock()
	if fn != nil {
		fn(view)
	}
}

func (n *Navigator) discard(route string, gen uint64) {
	n.observer.StaleDiscarded(route)
	n.logger.Debug("stale loader result discarded", "route", route, "generation", gen)
}

// Close cancels the loader in flight. Later navigations still match but no
// longer run loaders.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.loader != nil {
		n.loader.Cancel()
		n.loader = nil
	}
}

// loaderError classifies a loader failure into a coded error.
func loaderError(err error) error {
	var pe *resource.PanicError
	switch {
	case stderrors.As(err, &pe):
		return errors.New("E202").WithDetailf("%v", pe.Value).Wrap(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.New("E203").Wrap(err)
	default:
		return errors.New("E201").Wrap(err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.HasCode(err, "E202"):
		return "panic"
	case errors.HasCode(err, "E203"):
		return "timeout"
	default:
		return "error"
	}
}

// Render turns a view into the node tree to display: the page, its
// placeholder or its fallback, wrapped in the matched layouts. Layout chrome
// renders in every state.
func (n *Navigator) Render(v View) *vdom.VNode {
	if v.Status == StatusNotFound || v.Match == nil {
		req := &router.Request{Path: v.Path, Query: v.Query, Params: router.Params{}}
		return n.notFound(req, nil)
	}

	route := v.Match.Route
	var leaf *vdom.VNode
	switch v.Status {
	case StatusPending:
		if route.Placeholder != nil {
			leaf = route.Placeholder(v.Request)
		} else {
			leaf = DefaultPlaceholder(v.Request)
		}
	case StatusError:
		if route.Fallback != nil {
			leaf = route.Fallback(v.Request, v.Err)
		} else {
			leaf = DefaultFallback(v.Request, v.Err)
		}
	default:
		leaf = route.Page(v.Request, v.Data)
	}
	return router.Compose(v.Request, v.Match.Layouts, leaf)
}

// DefaultPlaceholder renders while a loader without its own placeholder runs.
func DefaultPlaceholder(req *router.Request) *vdom.VNode {
	return vdom.Div(vdom.Class("loading"), vdom.AriaBusy(true), vdom.Text("Loading…"))
}

// DefaultFallback renders for a failed loader without its own fallback.
func DefaultFallback(req *router.Request, err error) *vdom.VNode {
	return vdom.Div(vdom.Class("error"), vdom.Role("alert"),
		vdom.P(vdom.Text("Something went wrong loading this page.")),
	)
}

func defaultNotFound(req *router.Request, _ any) *vdom.VNode {
	return vdom.Div(vdom.Class("not-found"),
		vdom.H1(vdom.Text("Page not found")),
		vdom.P(vdom.Textf("Nothing lives at %s.", req.Path)),
	)
}
