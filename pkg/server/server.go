package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/waypoint/pkg/middleware"
	"github.com/vango-dev/waypoint/pkg/navigation"
	"github.com/vango-dev/waypoint/pkg/render"
	"github.com/vango-dev/waypoint/pkg/router"
)

// Paths served by the framework itself.
const (
	LivePath         = "/_waypoint/live"
	ClientScriptPath = "/_waypoint/client.js"
	HealthPath       = "/healthz"
	MetricsPath      = "/metrics"
)

// Server serves a route table over HTTP and the live channel.
type Server struct {
	config   Config
	table    *router.Table
	renderer *render.Renderer
	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	notFound router.PageHandler

	upgrader   websocket.Upgrader
	mux        *chi.Mux
	httpServer *http.Server

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// Option configures a Server.
type Option func(*Server)

// WithConfig replaces the default configuration.
func WithConfig(c Config) Option {
	return func(s *Server) { s.config = c }
}

// WithMetrics records metrics to m and serves g at /metrics.
func WithMetrics(m *middleware.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRenderer replaces the default HTML renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Server) { s.renderer = r }
}

// WithNotFound sets the page rendered when no route matches. Tables with a
// root wildcard never reach it.
func WithNotFound(p router.PageHandler) Option {
	return func(s *Server) { s.notFound = p }
}

// New creates a Server for table.
func New(table *router.Table, opts ...Option) (*Server, error) {
	s := &Server{
		config:   DefaultConfig(),
		table:    table,
		renderer: render.NewRenderer(render.RendererConfig{}),
		logger:   slog.Default(),
		sessions: make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	s.logger = s.logger.With("component", "server")
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.config.Live.CheckOrigin,
	}
	s.mux = s.routes()
	return s, nil
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.HTTP)
	}
	r.Use(middleware.Tracing(middleware.WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != HealthPath && r.URL.Path != MetricsPath
	})))

	r.Get(HealthPath, s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Get(LivePath, s.handleLive)
	r.Get(ClientScriptPath, handleClientScript)
	r.Get("/*", s.handlePage)
	r.Head("/*", s.handlePage)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Handler returns the server's http.Handler for mounting elsewhere.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.mux,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every live session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	sessions := make([]*liveSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.close()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// SessionCount returns the number of open live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) addSession(sess *liveSession) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
}

func (s *Server) removeSession(sess *liveSession) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
}

func (s *Server) newNavigator(ctx context.Context, logger *slog.Logger) *navigation.Navigator {
	opts := []navigation.Option{
		navigation.WithLoaderTimeout(s.config.LoaderTimeout),
		navigation.WithLogger(logger),
	}
	if s.metrics != nil {
		opts = append(opts, navigation.WithObserver(s.metrics))
	}
	if s.notFound != nil {
		opts = append(opts, navigation.WithNotFound(s.notFound))
	}
	return navigation.New(ctx, s.table, opts...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"routes":   len(s.table.Leaves()),
		"sessions": s.SessionCount(),
	})
}
