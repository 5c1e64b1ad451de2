package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/meostore/showcase-proxy/pkg/cache"
	"github.com/meostore/showcase-proxy/pkg/keyspace"
)

// countingLoader counts invocations and returns a fixed payload.
type countingLoader struct {
	calls   atomic.Int64
	payload json.RawMessage
	err     error
	delay   time.Duration
}

func (l *countingLoader) load(ctx context.Context, id int64) (json.RawMessage, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.payload, nil
}

// tempError is a retriable upstream failure.
type tempError struct{}

func (tempError) Error() string   { return "upstream unavailable" }
func (tempError) Temporary() bool { return true }

// permError is a non-retriable upstream failure.
type permError struct{}

func (permError) Error() string   { return "player not found" }
func (permError) Temporary() bool { return false }

func newCoalescer(store cache.Store, loader Loader) *Coalescer {
	return New(store, map[keyspace.Game]Loader{
		keyspace.GenshinImpact: loader,
	}, DefaultRetryConfig())
}

func TestFetch_FreshHitSkipsUpstream(t *testing.T) {
	store := cache.NewMemory()
	ctx := context.Background()

	if err := store.Set(ctx, "gi:800000000", []byte(`{"cached":true}`), 5*time.Minute); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	loader := &countingLoader{payload: []byte(`{"fresh":true}`)}
	c := newCoalescer(store, loader.load)

	data, status, err := c.Fetch(ctx, keyspace.GenshinImpact, 800000000)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if status != StatusHit {
		t.Errorf("status = %q, want hit", status)
	}
	if string(data) != `{"cached":true}` {
		t.Errorf("data = %s, want cached value", data)
	}
	if got := loader.calls.Load(); got != 0 {
		t.Errorf("loader called %d times, want 0", got)
	}
}

func TestFetch_RefreshOnMiss(t *testing.T) {
	store := cache.NewMemory()
	loader := &countingLoader{payload: []byte(`{"fresh":true}`)}
	c := newCoalescer(store, loader.load)

	data, status, err := c.Fetch(context.Background(), keyspace.GenshinImpact, 800000000)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if status != StatusMiss {
		t.Errorf("status = %q, want miss", status)
	}
	if string(data) != `{"fresh":true}` {
		t.Errorf("data = %s", data)
	}

	// The refreshed value must now be cached.
	entry, err := store.Get(context.Background(), "gi:800000000")
	if err != nil {
		t.Fatalf("entry not cached: %v", err)
	}
	if !entry.Fresh() {
		t.Error("cached entry should be fresh")
	}
}

func TestFetch_ConcurrentCallersCoalesce(t *testing.T) {
	const callers = 20

	store := cache.NewMemory()
	loader := &countingLoader{payload: []byte(`{"v":1}`), delay: 50 * time.Millisecond}
	c := newCoalescer(store, loader.load)

	var wg sync.WaitGroup
	results := make([]json.RawMessage, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = c.Fetch(context.Background(), keyspace.GenshinImpact, 800000000)
		}(i)
	}
	wg.Wait()

	if got := loader.calls.Load(); got != 1 {
		t.Errorf("loader called %d times for one key, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if string(results[i]) != `{"v":1}` {
			t.Errorf("caller %d got %s, want shared value", i, results[i])
		}
	}
}

func TestFetch_DistinctKeysDoNotBlockEachOther(t *testing.T) {
	store := cache.NewMemory()

	started := make(chan int64, 2)
	release := make(chan struct{})

	loader := func(ctx context.Context, id int64) (json.RawMessage, error) {
		started <- id
		<-release
		return []byte(`{}`), nil
	}
	c := newCoalescer(store, loader)

	var wg sync.WaitGroup
	for _, id := range []int64{800000000, 800000001} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, _, err := c.Fetch(context.Background(), keyspace.GenshinImpact, id); err != nil {
				t.Errorf("Fetch(%d) failed: %v", id, err)
			}
		}(id)
	}

	// Both loaders must be in flight at the same time.
	timeout := time.After(2 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-timeout:
			t.Fatal("second key blocked behind first key's fetch")
		}
	}
	close(release)
	wg.Wait()
}

func TestFetch_StaleFallbackOnUpstreamFailure(t *testing.T) {
	store := cache.NewMemory()
	ctx := context.Background()

	// Stale entry: freshness window of zero.
	if err := store.Set(ctx, "gi:800000000", []byte(`{"stale":true}`), 0); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	loader := &countingLoader{err: tempError{}}
	c := newCoalescer(store, loader.load)

	data, status, err := c.Fetch(ctx, keyspace.GenshinImpact, 800000000)
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if status != StatusStale {
		t.Errorf("status = %q, want stale", status)
	}
	if string(data) != `{"stale":true}` {
		t.Errorf("data = %s, want stale value", data)
	}
	if got := loader.calls.Load(); got != 3 {
		t.Errorf("loader called %d times, want 3 (all attempts)", got)
	}
}

// ctxStore fails every operation once its context is done, the way the
// Redis backend does.
type ctxStore struct {
	inner cache.Store
}

func (s ctxStore) Get(ctx context.Context, key string) (*cache.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.inner.Get(ctx, key)
}

func (s ctxStore) Set(ctx context.Context, key string, data json.RawMessage, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.inner.Set(ctx, key, data, ttl)
}

func TestFetch_AbortedCallerStillCachesResult(t *testing.T) {
	store := ctxStore{inner: cache.NewMemory()}

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls atomic.Int64
	loader := func(ctx context.Context, id int64) (json.RawMessage, error) {
		calls.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return []byte(`{"v":1}`), nil
	}
	c := newCoalescer(store, loader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := c.Fetch(ctx, keyspace.GenshinImpact, 800000000)
		done <- err
	}()

	// Abort the request while its refresh is in flight.
	<-started
	cancel()
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	// The refreshed value must be cached despite the aborted request, so the
	// next caller gets a hit instead of a second upstream round trip.
	_, status, err := c.Fetch(context.Background(), keyspace.GenshinImpact, 800000000)
	if err != nil {
		t.Fatalf("follow-up Fetch failed: %v", err)
	}
	if status != StatusHit {
		t.Errorf("follow-up status = %q, want hit", status)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("loader called %d times, want 1", got)
	}
}

func TestFetch_ErrorWhenNoFallbackExists(t *testing.T) {
	store := cache.NewMemory()
	loader := &countingLoader{err: tempError{}}
	c := newCoalescer(store, loader.load)

	_, _, err := c.Fetch(context.Background(), keyspace.GenshinImpact, 800000000)
	if err == nil {
		t.Fatal("expected error with no fallback available")
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted in chain", err)
	}
	var tmp tempError
	if !errors.As(err, &tmp) {
		t.Errorf("error = %v, want original cause preserved", err)
	}
}

func TestFetch_NoLoaderForKeyspace(t *testing.T) {
	c := New(cache.NewMemory(), nil, DefaultRetryConfig())

	_, _, err := c.Fetch(context.Background(), keyspace.StarRail, 600000001)
	if !errors.Is(err, ErrNoLoader) {
		t.Errorf("error = %v, want ErrNoLoader", err)
	}
}

func TestWarm_FailuresDoNotAbort(t *testing.T) {
	store := cache.NewMemory()

	var calls atomic.Int64
	loader := func(ctx context.Context, id int64) (json.RawMessage, error) {
		calls.Add(1)
		if id == 800000001 {
			return nil, permError{}
		}
		return []byte(`{}`), nil
	}
	c := newCoalescer(store, loader)

	c.Warm(context.Background(), []WarmTarget{
		{Game: keyspace.GenshinImpact, ID: 800000000},
		{Game: keyspace.GenshinImpact, ID: 800000001},
		{Game: keyspace.GenshinImpact, ID: 800000002},
	})

	if got := calls.Load(); got != 3 {
		t.Errorf("loader called %d times, want 3 (one per target)", got)
	}
	// Successful targets must be cached.
	for _, id := range []int64{800000000, 800000002} {
		if _, err := store.Get(context.Background(), keyspace.Key(keyspace.GenshinImpact, id)); err != nil {
			t.Errorf("target %d not warmed: %v", id, err)
		}
	}
}
