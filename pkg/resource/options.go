package resource

import "time"

// Timeout bounds each fetch. Zero means no limit.
func (r *Resource[T]) Timeout(d time.Duration) *Resource[T] {
	r.mu.Lock()
	r.timeout = d
	r.mu.Unlock()
	return r
}

// RetryOnError sets the number of retries and delay between them. Panics are
// never retried.
func (r *Resource[T]) RetryOnError(count int, delay time.Duration) *Resource[T] {
	r.mu.Lock()
	r.retryCount = count
	r.retryDelay = delay
	r.mu.Unlock()
	return r
}

// OnSuccess registers a callback to be called when data is successfully loaded.
func (r *Resource[T]) OnSuccess(fn func(T)) *Resource[T] {
	r.mu.Lock()
	r.onSuccess = fn
	r.mu.Unlock()
	return r
}

// OnError registers a callback to be called when data loading fails.
func (r *Resource[T]) OnError(fn func(error)) *Resource[T] {
	r.mu.Lock()
	r.onError = fn
	r.mu.Unlock()
	return r
}

// OnSettle registers a callback receiving the snapshot of every fetch that
// settles while current, successful or not.
func (r *Resource[T]) OnSettle(fn func(Snapshot[T])) *Resource[T] {
	r.mu.Lock()
	r.onSettle = fn
	r.mu.Unlock()
	return r
}

// OnStale registers a callback for fetches whose result was discarded
// because a newer fetch started or the resource was cancelled.
func (r *Resource[T]) OnStale(fn func(id uint64)) *Resource[T] {
	r.mu.Lock()
	r.onStale = fn
	r.mu.Unlock()
	return r
}
