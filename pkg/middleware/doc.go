// Package middleware provides the observability layer of a Waypoint server.
//
// This package includes:
//   - Prometheus metrics for navigations, loaders, the query cache, live
//     sessions and HTTP requests
//   - OpenTelemetry tracing for HTTP requests
//   - Structured request logging with log/slog
//
// # Prometheus Metrics
//
// Metrics implements navigation.Observer and querycache.Observer, so one
// instance is handed to every component that reports:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	cache := querycache.New(querycache.WithObserver(m))
//	nav := navigation.New(ctx, table, navigation.WithObserver(m))
//	r.Use(m.HTTP)
//
// Collected series (namespace "waypoint" by default):
//   - waypoint_navigations_total{route}
//   - waypoint_loader_duration_seconds{route,outcome}
//   - waypoint_stale_results_total{route}
//   - waypoint_cache_events_total{kind,result}
//   - waypoint_live_sessions
//   - waypoint_live_frames_total{direction,type}
//   - waypoint_websocket_errors_total{type}
//   - waypoint_http_requests_total{method,code}
//   - waypoint_http_request_duration_seconds{method}
//
// # OpenTelemetry
//
// Tracing starts a server span per request using the global tracer
// provider. Configure the provider in main() before starting the server:
//
//	otel.SetTracerProvider(tp)
//	r.Use(middleware.Tracing(middleware.WithTracerName("my-site")))
//
// # Request Logging
//
// Logger writes one slog record per request with the status, size,
// duration and chi request id.
package middleware
