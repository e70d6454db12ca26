package resource

import (
	"github.com/vango-dev/waypoint/pkg/vdom"
)

// Handler renders one resource state.
type Handler[T any] interface {
	handle(Snapshot[T]) (*vdom.VNode, bool)
}

// Match renders the first handler accepting the current state. All handlers
// see the same snapshot.
func (r *Resource[T]) Match(handlers ...Handler[T]) *vdom.VNode {
	return MatchSnapshot(r.Snapshot(), handlers...)
}

// MatchSnapshot is Match for a snapshot taken earlier.
func MatchSnapshot[T any](s Snapshot[T], handlers ...Handler[T]) *vdom.VNode {
	for _, h := range handlers {
		if node, ok := h.handle(s); ok {
			return node
		}
	}
	return nil
}

type stateHandler[T any] struct {
	states []State
	fn     func() *vdom.VNode
}

func (h stateHandler[T]) handle(s Snapshot[T]) (*vdom.VNode, bool) {
	for _, st := range h.states {
		if s.State == st {
			return h.fn(), true
		}
	}
	return nil, false
}

type errorHandler[T any] struct {
	fn func(error) *vdom.VNode
}

func (h errorHandler[T]) handle(s Snapshot[T]) (*vdom.VNode, bool) {
	if s.State == Error {
		return h.fn(s.Err), true
	}
	return nil, false
}

type readyHandler[T any] struct {
	fn func(T) *vdom.VNode
}

func (h readyHandler[T]) handle(s Snapshot[T]) (*vdom.VNode, bool) {
	if s.State == Ready {
		return h.fn(s.Data), true
	}
	return nil, false
}

// Constructors

// OnPending handles the Pending state.
func OnPending[T any](fn func() *vdom.VNode) Handler[T] {
	return stateHandler[T]{states: []State{Pending}, fn: fn}
}

// OnLoading handles the Loading state.
func OnLoading[T any](fn func() *vdom.VNode) Handler[T] {
	return stateHandler[T]{states: []State{Loading}, fn: fn}
}

// OnLoadingOrPending handles both Loading and Pending states.
func OnLoadingOrPending[T any](fn func() *vdom.VNode) Handler[T] {
	return stateHandler[T]{states: []State{Pending, Loading}, fn: fn}
}

// OnError handles the Error state.
func OnError[T any](fn func(error) *vdom.VNode) Handler[T] {
	return errorHandler[T]{fn: fn}
}

// OnReady handles the Ready state.
func OnReady[T any](fn func(T) *vdom.VNode) Handler[T] {
	return readyHandler[T]{fn: fn}
}
