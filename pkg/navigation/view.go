package navigation

import (
	"net/url"

	"github.com/vango-dev/waypoint/pkg/router"
)

// Status is the lifecycle state of a view.
type Status int

const (
	StatusPending  Status = iota // Loader in flight
	StatusReady                  // Page renders with data
	StatusError                  // Loader failed; the route's fallback renders
	StatusNotFound               // Nothing in the table matched
)

// String returns the status name used on the wire and in logs.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Final reports whether the status will not change for this generation.
func (s Status) Final() bool {
	return s != StatusPending
}

// View is the state of one navigation.
type View struct {
	Generation uint64
	Path       string
	Query      url.Values

	// Match and Request are nil when Status is StatusNotFound.
	Match   *router.Match
	Request *router.Request

	Status Status
	Data   any
	Err    error
}

// RouteName returns the matched leaf's name, or "" for not found.
func (v View) RouteName() string {
	if v.Match == nil {
		return ""
	}
	return v.Match.Route.Name
}

// URL returns the canonical path with its query string.
func (v View) URL() string {
	if len(v.Query) == 0 {
		return v.Path
	}
	return v.Path + "?" + v.Query.Encode()
}
