package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/waypoint/pkg/vdom"
)

func TestResourceInitialState(t *testing.T) {
	r := New(func(context.Context) (string, error) { return "data", nil })

	if r.State() != Pending {
		t.Errorf("State() = %v, want pending", r.State())
	}
	if !r.IsLoading() {
		t.Error("IsLoading() should be true before the first fetch")
	}
	snap, err := r.Wait(context.Background())
	if err != nil || snap.State != Pending {
		t.Errorf("Wait() before Start = %+v, %v", snap, err)
	}
}

func TestResourceSuccess(t *testing.T) {
	done := make(chan struct{})
	r := New(func(context.Context) (string, error) {
		return "success", nil
	}).OnSuccess(func(data string) {
		if data != "success" {
			t.Errorf("Expected 'success', got '%s'", data)
		}
		close(done)
	})
	r.Start(context.Background())

	select {
	case <-done:
		if !r.IsReady() {
			t.Error("Expected IsReady() to be true")
		}
		if r.Data() != "success" {
			t.Errorf("Expected 'success', got '%s'", r.Data())
		}
		if r.Error() != nil {
			t.Error("Expected no error")
		}
		if r.LastFetch().IsZero() {
			t.Error("LastFetch() should be set")
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for resource success")
	}
}

func TestResourceError(t *testing.T) {
	expectedErr := errors.New("fail")
	r := New(func(context.Context) (string, error) {
		return "", expectedErr
	})
	r.Start(context.Background())

	snap, err := r.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.State != Error || !errors.Is(snap.Err, expectedErr) {
		t.Errorf("snapshot = %+v, want error state with %v", snap, expectedErr)
	}
	if r.DataOr("fallback") != "fallback" {
		t.Error("DataOr() should return the fallback in error state")
	}
}

func TestResourcePanic(t *testing.T) {
	r := New(func(context.Context) (int, error) {
		panic("kaboom")
	}).RetryOnError(3, time.Millisecond)
	r.Start(context.Background())

	snap, _ := r.Wait(context.Background())
	var pe *PanicError
	if !errors.As(snap.Err, &pe) {
		t.Fatalf("Err = %v, want *PanicError", snap.Err)
	}
	if pe.Value != "kaboom" || len(pe.Stack) == 0 {
		t.Errorf("PanicError = %+v", pe)
	}
}

func TestResourceRetry(t *testing.T) {
	var calls atomic.Int32
	r := New(func(context.Context) (int, error) {
		if calls.Add(1) < 3 {
			return 0, errors.New("flaky")
		}
		return 7, nil
	}).RetryOnError(2, time.Millisecond)
	r.Start(context.Background())

	snap, _ := r.Wait(context.Background())
	if snap.State != Ready || snap.Data != 7 {
		t.Errorf("snapshot = %+v, want ready 7", snap)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestResourceTimeout(t *testing.T) {
	r := New(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}).Timeout(10 * time.Millisecond)
	r.Start(context.Background())

	snap, _ := r.Wait(context.Background())
	if !errors.Is(snap.Err, context.DeadlineExceeded) {
		t.Errorf("Err = %v, want deadline exceeded", snap.Err)
	}
}

func TestResourceRestartDiscardsStaleResult(t *testing.T) {
	release := make(chan struct{})
	firstCtx := make(chan context.Context, 1)
	stale := make(chan uint64, 1)

	var calls atomic.Int32
	r := New(func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			firstCtx <- ctx
			<-release
			return "first", nil
		}
		return "second", nil
	}).OnStale(func(id uint64) { stale <- id })

	first := r.Start(context.Background())
	ctx := <-firstCtx

	second := r.Start(context.Background())
	if second == first {
		t.Fatal("Start() should return a new fetch id")
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("first fetch context was not cancelled")
	}

	snap, _ := r.Wait(context.Background())
	if snap.Data != "second" {
		t.Fatalf("Data = %q, want second", snap.Data)
	}

	close(release)
	select {
	case id := <-stale:
		if id != first {
			t.Errorf("stale id = %d, want %d", id, first)
		}
	case <-time.After(time.Second):
		t.Fatal("stale result was not reported")
	}
	if r.Data() != "second" {
		t.Errorf("Data() = %q after stale settle, want second", r.Data())
	}
}

func TestResourceCancel(t *testing.T) {
	started := make(chan struct{})
	r := New(func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "late", nil
	})
	r.Start(context.Background())
	<-started

	r.Cancel()
	snap, err := r.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.State != Pending || !errors.Is(snap.Err, ErrCanceled) {
		t.Errorf("snapshot after Cancel = %+v", snap)
	}

	// A second Cancel is a no-op.
	r.Cancel()
}

func TestResourceWaitContext(t *testing.T) {
	r := New(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	r.Start(context.Background())
	defer r.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}

func TestResourceOnSettle(t *testing.T) {
	settled := make(chan Snapshot[int], 1)
	r := New(func(context.Context) (int, error) { return 1, nil }).
		OnSettle(func(s Snapshot[int]) { settled <- s })
	id := r.Start(context.Background())

	select {
	case s := <-settled:
		if s.ID != id || s.State != Ready || s.Data != 1 {
			t.Errorf("settled snapshot = %+v", s)
		}
	case <-time.After(time.Second):
		t.Fatal("OnSettle was not called")
	}
}

func TestResourceMatch(t *testing.T) {
	r := New(func(context.Context) (string, error) { return "hello", nil })
	r.Start(context.Background())
	r.Wait(context.Background())

	node := r.Match(
		OnPending[string](func() *vdom.VNode { return vdom.Text("Pending") }),
		OnLoading[string](func() *vdom.VNode { return vdom.Text("Loading") }),
		OnError[string](func(err error) *vdom.VNode { return vdom.Text("Error") }),
		OnReady(func(data string) *vdom.VNode { return vdom.Text(data) }),
	)
	if node == nil || node.Text != "hello" {
		t.Errorf("Match() = %v, want hello", node)
	}
}

func TestMatchLoadingOrPending(t *testing.T) {
	r := New(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	waiting := func() *vdom.VNode { return vdom.Text("Waiting") }
	node := r.Match(OnLoadingOrPending[string](waiting))
	if node == nil || node.Text != "Waiting" {
		t.Errorf("pending Match() = %v", node)
	}

	r.Start(context.Background())
	defer r.Cancel()
	node = r.Match(
		OnReady(func(s string) *vdom.VNode { return vdom.Text(s) }),
		OnLoadingOrPending[string](waiting),
	)
	if node == nil || node.Text != "Waiting" {
		t.Errorf("loading Match() = %v", node)
	}
}

func TestMatchNoHandler(t *testing.T) {
	s := Snapshot[int]{State: Error, Err: errors.New("x")}
	if node := MatchSnapshot(s, OnReady(func(int) *vdom.VNode { return vdom.Text("x") })); node != nil {
		t.Errorf("MatchSnapshot() = %v, want nil", node)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Pending: "pending", Loading: "loading", Ready: "ready", Error: "error", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
