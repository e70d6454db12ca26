package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

// State represents the current state of a resource.
type State int

const (
	Pending State = iota // Initial state, before first fetch
	Loading              // Fetch in progress
	Ready                // Data successfully loaded
	Error                // Fetch failed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Fetcher loads a resource's data. It must return promptly once ctx is done.
type Fetcher[T any] func(ctx context.Context) (T, error)

// PanicError is returned when a fetcher panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("loader panic: %v", e.Value)
}

// ErrCanceled is the error of a snapshot whose fetch was superseded or
// cancelled before settling.
var ErrCanceled = errors.New("resource: fetch canceled")

// Snapshot is a consistent view of a resource at one point in time.
type Snapshot[T any] struct {
	ID    uint64
	State State
	Data  T
	Err   error
}

// Resource manages asynchronous data fetching and state.
type Resource[T any] struct {
	fetcher Fetcher[T]

	// Options
	timeout    time.Duration
	retryCount int
	retryDelay time.Duration
	onSuccess  func(T)
	onError    func(error)
	onSettle   func(Snapshot[T])
	onStale    func(id uint64)

	// Internal
	mu        sync.Mutex
	state     State
	data      T
	err       error
	lastFetch time.Time
	fetchID   uint64 // For cancelling/ignoring outdated fetches
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a Resource for fetcher. Nothing is fetched until Start.
func New[T any](fetcher Fetcher[T]) *Resource[T] {
	return &Resource[T]{fetcher: fetcher}
}

// Start begins a fetch derived from ctx and returns its fetch id. A fetch
// already in flight is cancelled and its eventual result discarded.
func (r *Resource[T]) Start(ctx context.Context) uint64 {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.fetchID++
	id := r.fetchID

	fetchCtx, cancel := context.WithCancel(ctx)
	if r.timeout > 0 {
		fetchCtx, cancel = withTimeout(fetchCtx, cancel, r.timeout)
	}
	r.cancel = cancel
	r.state = Loading
	r.err = nil
	if r.done != nil {
		close(r.done)
	}
	done := make(chan struct{})
	r.done = done
	r.mu.Unlock()

	go r.run(fetchCtx, cancel, id, done)
	return id
}

func withTimeout(ctx context.Context, parent context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	tctx, tcancel := context.WithTimeout(ctx, d)
	return tctx, func() {
		tcancel()
		parent()
	}
}

func (r *Resource[T]) run(ctx context.Context, cancel context.CancelFunc, id uint64, done chan struct{}) {
	defer cancel()

	var (
		result T
		err    error
	)
retry:
	for attempt := 0; ; attempt++ {
		result, err = r.fetch(ctx)
		var pe *PanicError
		if err == nil || attempt >= r.retryCount || errors.As(err, &pe) {
			break
		}
		select {
		case <-ctx.Done():
			break retry
		case <-time.After(r.retryDelay):
		}
		if !r.current(id) {
			break
		}
	}

	r.mu.Lock()
	if r.fetchID != id {
		r.mu.Unlock()
		if r.onStale != nil {
			r.onStale(id)
		}
		return
	}
	r.lastFetch = time.Now()
	if err != nil {
		r.state = Error
		r.err = err
	} else {
		r.state = Ready
		r.data = result
	}
	r.cancel = nil
	r.done = nil
	snap := r.snapshotLocked()
	r.mu.Unlock()
	defer close(done)

	if err != nil {
		if r.onError != nil {
			r.onError(err)
		}
	} else if r.onSuccess != nil {
		r.onSuccess(result)
	}
	if r.onSettle != nil {
		r.onSettle(snap)
	}
}

// fetch calls the fetcher, turning a panic into a *PanicError.
func (r *Resource[T]) fetch(ctx context.Context) (result T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return r.fetcher(ctx)
}

func (r *Resource[T]) current(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetchID == id
}

// Cancel abandons the fetch in flight, if any. Its result will be discarded.
// Data from an earlier settled fetch is kept.
func (r *Resource[T]) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	r.fetchID++
	if r.state == Loading {
		r.state = Pending
		r.err = ErrCanceled
	}
	if r.done != nil {
		close(r.done)
		r.done = nil
	}
}

// Snapshot returns the current state, data and error together.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Resource[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{ID: r.fetchID, State: r.state, Data: r.data, Err: r.err}
}

// Wait blocks until the current fetch settles or is cancelled, or ctx is
// done. A settled fetch's callbacks have run by the time Wait returns.
func (r *Resource[T]) Wait(ctx context.Context) (Snapshot[T], error) {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return r.Snapshot(), ctx.Err()
		}
	}
	return r.Snapshot(), nil
}

// State methods

func (r *Resource[T]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resource[T]) IsLoading() bool {
	s := r.State()
	return s == Loading || s == Pending
}

func (r *Resource[T]) IsReady() bool {
	return r.State() == Ready
}

func (r *Resource[T]) IsError() bool {
	return r.State() == Error
}

// Data access methods

func (r *Resource[T]) Data() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

func (r *Resource[T]) DataOr(fallback T) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Ready {
		return r.data
	}
	return fallback
}

func (r *Resource[T]) Error() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// LastFetch returns when the last fetch settled.
func (r *Resource[T]) LastFetch() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFetch
}
