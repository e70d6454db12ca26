package router

// Option configures a route.
type Option func(*Route)

// WithName overrides the route's display name.
func WithName(name string) Option {
	return func(r *Route) { r.Name = name }
}

// WithLoader attaches a loader to a leaf route.
func WithLoader(l Loader) Option {
	return func(r *Route) { r.Loader = l }
}

// WithFallback sets the error boundary rendered when the loader fails.
func WithFallback(f FallbackHandler) Option {
	return func(r *Route) { r.Fallback = f }
}

// WithPlaceholder sets what renders while the loader is pending.
func WithPlaceholder(p PlaceholderHandler) Option {
	return func(r *Route) { r.Placeholder = p }
}

// WithSource records the file a route was derived from.
func WithSource(file string) Option {
	return func(r *Route) { r.Source = file }
}

// WithStatus sets the HTTP status of a rendered page, e.g. 404 for a
// catch-all "not found" page.
func WithStatus(code int) Option {
	return func(r *Route) { r.Status = code }
}

// Page declares a leaf route. A path ending in a wildcard segment makes it a
// wildcard route.
func Page(path string, page PageHandler, opts ...Option) Route {
	r := Route{Kind: KindPage, Path: path, Page: page}
	if segs, err := parsePattern(path); err == nil && len(segs) > 0 && segs[len(segs)-1].kind == segWildcard {
		r.Kind = KindWildcard
	}
	return r.With(opts...)
}

// Index declares the leaf matching its parent's path exactly.
func Index(page PageHandler, opts ...Option) Route {
	return Route{Kind: KindIndex, Page: page}.With(opts...)
}

// Wildcard declares the catch-all leaf for its level.
func Wildcard(page PageHandler, opts ...Option) Route {
	return Route{Kind: KindWildcard, Path: "*", Page: page}.With(opts...)
}

// Layout declares a layout. path may be empty, in which case the layout only
// contributes chrome. layout may be nil for a pure path group.
func Layout(path string, layout LayoutHandler, children ...Route) Route {
	return Route{Kind: KindLayout, Path: path, Layout: layout, Children: children}
}

// With returns a copy of r with opts applied.
func (r Route) With(opts ...Option) Route {
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
