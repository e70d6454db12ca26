package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingObserver struct {
	hits, misses, shared atomic.Int32
}

func (o *countingObserver) CacheHit(string)    { o.hits.Add(1) }
func (o *countingObserver) CacheMiss(string)   { o.misses.Add(1) }
func (o *countingObserver) CacheShared(string) { o.shared.Add(1) }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestGetCachesWithinStaleTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	obs := &countingObserver{}
	c := New(WithStaleTime(time.Minute), WithClock(clock.Now), WithObserver(obs))

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		return int(calls.Add(1)), nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := c.Get(ctx, "post:a", fetch)
		if err != nil {
			t.Fatal(err)
		}
		if v != 1 {
			t.Errorf("Get() = %v, want 1", v)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1", calls.Load())
	}
	if obs.hits.Load() != 2 || obs.misses.Load() != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", obs.hits.Load(), obs.misses.Load())
	}

	clock.Advance(time.Minute)
	v, _ := c.Get(ctx, "post:a", fetch)
	if v != 2 {
		t.Errorf("Get() after stale time = %v, want refetched 2", v)
	}
}

func TestGetCollapsesConcurrentMisses(t *testing.T) {
	c := New()
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	const n = 10
	var wg sync.WaitGroup
	results := make([]any, n)
	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			results[i], _ = c.Get(context.Background(), "lessons:basics", fetch)
		}(i)
	}
	for i := 0; i < n; i++ {
		<-started
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1", calls.Load())
	}
	for i, r := range results {
		if r != "value" {
			t.Errorf("results[%d] = %v", i, r)
		}
	}
}

func TestGetDoesNotCacheErrors(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	if _, err := c.Get(context.Background(), "k", fetch); !errors.Is(err, boom) {
		t.Fatalf("first Get() error = %v, want boom", err)
	}
	v, err := c.Get(context.Background(), "k", fetch)
	if err != nil || v != "ok" {
		t.Errorf("second Get() = %v, %v", v, err)
	}
}

func TestGetReturnsOnContextDone(t *testing.T) {
	c := New()
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "slow", func(context.Context) (any, error) {
			<-release
			return "late", nil
		})
		errc <- err
	}()

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Get() error = %v, want canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Get() did not return after cancel")
	}
}

func TestFetchTyped(t *testing.T) {
	c := New()
	got, err := Fetch(context.Background(), c, "n", func(context.Context) ([]int, error) {
		return []int{1, 2}, nil
	})
	if err != nil || len(got) != 2 {
		t.Errorf("Fetch() = %v, %v", got, err)
	}

	_, err = Fetch(context.Background(), c, "e", func(context.Context) (string, error) {
		return "", errors.New("nope")
	})
	if err == nil {
		t.Error("Fetch() should propagate errors")
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	c.Set("post:a", 1)
	c.Set("post:b", 2)
	c.Set("lessons:basics", 3)

	if v, ok := c.Peek("post:a"); !ok || v != 1 {
		t.Errorf("Peek() = %v, %v", v, ok)
	}

	c.Invalidate("post:a")
	if _, ok := c.Peek("post:a"); ok {
		t.Error("post:a survived Invalidate")
	}

	if n := c.InvalidatePrefix("post:"); n != 1 {
		t.Errorf("InvalidatePrefix() = %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestZeroStaleTimeAlwaysRefetches(t *testing.T) {
	c := New(WithStaleTime(0))
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) { return calls.Add(1), nil }

	c.Get(context.Background(), "k", fetch)
	c.Get(context.Background(), "k", fetch)
	if calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want 2", calls.Load())
	}
}
