package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "waypoint").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "waypoint",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors of a Waypoint server.
type Metrics struct {
	navigations    *prometheus.CounterVec
	loaderDuration *prometheus.HistogramVec
	staleResults   *prometheus.CounterVec
	cacheEvents    *prometheus.CounterVec
	liveSessions   prometheus.Gauge
	liveFrames     *prometheus.CounterVec
	wsErrors       *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors. Registering twice with
// the same registry panics, so create one Metrics per registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by matched route",
			ConstLabels: config.ConstLabels,
		}, []string{"route"}),

		loaderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "loader_duration_seconds",
			Help:        "Loader duration in seconds by route and outcome",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route", "outcome"}),

		staleResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stale_results_total",
			Help:        "Loader results discarded because their navigation was superseded",
			ConstLabels: config.ConstLabels,
		}, []string{"route"}),

		cacheEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_events_total",
			Help:        "Query cache lookups by key kind and result",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "result"}),

		liveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_sessions",
			Help:        "Number of open live navigation sessions",
			ConstLabels: config.ConstLabels,
		}),

		liveFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_frames_total",
			Help:        "Live channel frames by direction and type",
			ConstLabels: config.ConstLabels,
		}, []string{"direction", "type"}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "HTTP requests by method and status code",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "code"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"}),
	}
}

func routeLabel(route string) string {
	if route == "" {
		return "not_found"
	}
	return route
}

// NavigationStarted implements navigation.Observer.
func (m *Metrics) NavigationStarted(route string) {
	m.navigations.WithLabelValues(routeLabel(route)).Inc()
}

// LoaderSettled implements navigation.Observer.
func (m *Metrics) LoaderSettled(route, outcome string, d time.Duration) {
	m.loaderDuration.WithLabelValues(routeLabel(route), outcome).Observe(d.Seconds())
}

// StaleDiscarded implements navigation.Observer.
func (m *Metrics) StaleDiscarded(route string) {
	m.staleResults.WithLabelValues(routeLabel(route)).Inc()
}

// cacheKind keeps cache labels low-cardinality: "post:hello" -> "post".
func cacheKind(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}

// CacheHit implements querycache.Observer.
func (m *Metrics) CacheHit(key string) {
	m.cacheEvents.WithLabelValues(cacheKind(key), "hit").Inc()
}

// CacheMiss implements querycache.Observer.
func (m *Metrics) CacheMiss(key string) {
	m.cacheEvents.WithLabelValues(cacheKind(key), "miss").Inc()
}

// CacheShared implements querycache.Observer.
func (m *Metrics) CacheShared(key string) {
	m.cacheEvents.WithLabelValues(cacheKind(key), "shared").Inc()
}

// SessionOpened records a new live session.
func (m *Metrics) SessionOpened() {
	m.liveSessions.Inc()
}

// SessionClosed records the end of a live session.
func (m *Metrics) SessionClosed() {
	m.liveSessions.Dec()
}

// FrameReceived records an inbound live frame.
func (m *Metrics) FrameReceived(typ string) {
	m.liveFrames.WithLabelValues("in", typ).Inc()
}

// FrameSent records an outbound live frame.
func (m *Metrics) FrameSent(typ string) {
	m.liveFrames.WithLabelValues("out", typ).Inc()
}

// WebSocketError records a WebSocket error.
func (m *Metrics) WebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}

// HTTP is chi-compatible middleware counting requests and timing them.
func (m *Metrics) HTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
	})
}
