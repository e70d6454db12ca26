package server

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"github.com/vango-dev/waypoint/pkg/navigation"
	"github.com/vango-dev/waypoint/pkg/routepath"
	"github.com/vango-dev/waypoint/pkg/router"
)

// handlePage server-side renders the requested path.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	res, err := routepath.Canonicalize(r.URL.EscapedPath())
	if err != nil {
		http.Error(w, "invalid path: "+err.Error(), http.StatusBadRequest)
		return
	}
	if res.Changed {
		target := res.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
		return
	}

	target := res.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	logger := s.logger.With("request_id", requestID(r))
	nav := s.newNavigator(r.Context(), logger)
	defer nav.Close()

	view, err := nav.NavigateAndWait(r.Context(), target)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		logger.Error("navigation failed", "path", target, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	node := nav.Render(view)
	templ.Handler(s.renderer.Component(node), templ.WithStatus(statusFor(view))).ServeHTTP(w, r)
}

// statusFor maps a settled view to its HTTP status.
func statusFor(v navigation.View) int {
	switch v.Status {
	case navigation.StatusNotFound:
		return http.StatusNotFound
	case navigation.StatusError:
		if errors.Is(v.Err, router.ErrNotFound) {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	}
	if v.Match != nil && v.Match.Route.Status != 0 {
		return v.Match.Route.Status
	}
	return http.StatusOK
}
