package navigation

import "time"

// Observer receives navigation events, typically for metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	// NavigationStarted is called once per navigation with the matched route
	// name, or "" for not found.
	NavigationStarted(route string)

	// LoaderSettled is called when a current loader finishes. outcome is
	// "ok", "error", "timeout" or "panic".
	LoaderSettled(route, outcome string, d time.Duration)

	// StaleDiscarded is called when a loader result is dropped because its
	// navigation was superseded.
	StaleDiscarded(route string)
}

type nopObserver struct{}

func (nopObserver) NavigationStarted(string)                    {}
func (nopObserver) LoaderSettled(string, string, time.Duration) {}
func (nopObserver) StaleDiscarded(string)                       {}
