package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/meostore/showcase-proxy/pkg/cache"
	"github.com/meostore/showcase-proxy/pkg/keyspace"
	"github.com/meostore/showcase-proxy/pkg/logging"
	"github.com/rs/zerolog"
)

// Loader fetches a payload from an upstream for one identifier.
type Loader func(ctx context.Context, id int64) (json.RawMessage, error)

// Status describes how a fetch was satisfied.
type Status string

const (
	// StatusHit means a fresh cache entry was returned.
	StatusHit Status = "hit"

	// StatusMiss means the value was refreshed from upstream.
	StatusMiss Status = "miss"

	// StatusStale means the upstream failed and a stale entry was returned.
	StatusStale Status = "stale"
)

// Coalescer orchestrates cache reads, upstream refreshes and stale
// fallback. It owns the per-key lock registry; locks are created lazily and
// retained for the process lifetime (key cardinality is bounded by real
// traffic).
type Coalescer struct {
	store   cache.Store
	loaders map[keyspace.Game]Loader
	retry   RetryConfig
	logger  zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Coalescer over a store and a loader per keyspace.
func New(store cache.Store, loaders map[keyspace.Game]Loader, retry RetryConfig) *Coalescer {
	if store == nil {
		panic("store cannot be nil")
	}
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	return &Coalescer{
		store:   store,
		loaders: loaders,
		retry:   retry,
		logger:  logging.NewLogger("fetch"),
		locks:   make(map[string]*sync.Mutex),
	}
}

// keyLock returns the mutex for key, creating it on first access.
func (c *Coalescer) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}

// Fetch returns the payload for (game, id), serving from cache when fresh.
//
// On a miss or stale entry it serializes concurrent callers for the same key
// through a per-key lock, re-checks the cache after acquiring it, refreshes
// from upstream with retry, and falls back to a stale cached value when the
// refresh fails. The returned Status tells the caller which path was taken.
func (c *Coalescer) Fetch(ctx context.Context, game keyspace.Game, id int64) (json.RawMessage, Status, error) {
	key := keyspace.Key(game, id)

	// Fast path: fresh entry, no lock taken.
	if entry, err := c.store.Get(ctx, key); err == nil && entry.Fresh() {
		fetchTotal.WithLabelValues(string(game), string(StatusHit)).Inc()
		return entry.Data, StatusHit, nil
	}

	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	// Everything under the lock is shared by every caller waiting on it, so
	// none of it may die with the first caller's request context: an aborted
	// winner must still cache the result its waiters depend on.
	dctx := context.WithoutCancel(ctx)

	// Double-check: another caller may have refreshed while we waited.
	if entry, err := c.store.Get(dctx, key); err == nil && entry.Fresh() {
		fetchTotal.WithLabelValues(string(game), string(StatusHit)).Inc()
		return entry.Data, StatusHit, nil
	}

	loader, ok := c.loaders[game]
	if !ok {
		fetchTotal.WithLabelValues(string(game), "error").Inc()
		return nil, "", fmt.Errorf("%w: %q", ErrNoLoader, game)
	}

	data, err := c.refresh(dctx, game, id, loader)
	if err != nil {
		if entry, gerr := c.store.Get(dctx, key); gerr == nil {
			staleFallbacksTotal.WithLabelValues(string(game)).Inc()
			fetchTotal.WithLabelValues(string(game), string(StatusStale)).Inc()
			c.logger.Warn().Err(err).
				Str("key", key).
				Dur("age", entry.Age()).
				Msg("Upstream failed, serving stale cache entry")
			return entry.Data, StatusStale, nil
		}
		fetchTotal.WithLabelValues(string(game), "error").Inc()
		return nil, "", err
	}

	if serr := c.store.Set(dctx, key, data, keyspace.TTL(game)); serr != nil {
		// A failed write only costs the next caller a refetch.
		c.logger.Warn().Err(serr).Str("key", key).Msg("Failed to cache payload")
	}

	fetchTotal.WithLabelValues(string(game), string(StatusMiss)).Inc()
	return data, StatusMiss, nil
}
