package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// Store is the contract shared by the memory and Redis backends.
//
// Get returns the entry for key, including entries that are past their
// freshness deadline; it returns ErrCacheMiss only when nothing usable is
// stored. Set overwrites the entry for key with a payload that stays fresh
// for ttl.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, data json.RawMessage, ttl time.Duration) error
}
