// Package querycache is a keyed, concurrency-safe cache for loader results.
//
// Entries are fresh for a configurable stale time. Concurrent misses for the
// same key collapse into one fetch; every caller receives its result. Errors
// are never cached.
package querycache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultStaleTime is used when no stale time is configured.
const DefaultStaleTime = 30 * time.Second

// Fetcher produces the value for a key on a miss.
type Fetcher func(ctx context.Context) (any, error)

// Observer receives cache events. Implementations must be safe for
// concurrent use.
type Observer interface {
	CacheHit(key string)
	CacheMiss(key string)
	CacheShared(key string)
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache is a query cache. The zero value is not usable; call New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group

	staleTime time.Duration
	now       func() time.Time
	observer  Observer
	logger    *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime sets how long an entry is served without refetching.
// Zero or negative disables reuse: every Get refetches, but concurrent
// fetches are still collapsed.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithObserver reports hits, misses and shared fetches to o.
func WithObserver(o Observer) Option {
	return func(c *Cache) { c.observer = o }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates a Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[string]entry),
		staleTime: DefaultStaleTime,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "querycache")
	return c
}

// Get returns the cached value for key, calling fetch on a miss or when the
// entry is stale. The fetch runs detached from ctx so that a caller giving up
// doesn't fail the other callers waiting on it; Get itself returns as soon as
// ctx is done.
func (c *Cache) Get(ctx context.Context, key string, fetch Fetcher) (any, error) {
	if v, ok := c.fresh(key); ok {
		c.hit(key)
		return v, nil
	}
	c.miss(key)

	ch := c.group.DoChan(key, func() (any, error) {
		// Another caller may have filled the entry while this one queued.
		if v, ok := c.fresh(key); ok {
			return v, nil
		}
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			c.logger.Debug("fetch failed", "key", key, "error", err)
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.shared(key)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Fetch is a typed wrapper around Cache.Get.
func Fetch[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}

func (c *Cache) fresh(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.staleTime <= 0 || c.now().Sub(e.fetchedAt) >= c.staleTime {
		return nil, false
	}
	return e.value, true
}

// Peek returns the cached value for key regardless of staleness.
func (c *Cache) Peek(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.value, ok
}

// Set stores v under key as freshly fetched.
func (c *Cache) Set(key string, v any) {
	c.mu.Lock()
	c.entries[key] = entry{value: v, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate drops key. The next Get refetches.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)
}

// InvalidatePrefix drops every key starting with prefix and returns how many
// entries were removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	var keys []string
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
	for _, k := range keys {
		c.group.Forget(k)
	}
	return len(keys)
}

// Len returns the number of cached entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) hit(key string) {
	if c.observer != nil {
		c.observer.CacheHit(key)
	}
}

func (c *Cache) miss(key string) {
	if c.observer != nil {
		c.observer.CacheMiss(key)
	}
}

func (c *Cache) shared(key string) {
	if c.observer != nil {
		c.observer.CacheShared(key)
	}
}
