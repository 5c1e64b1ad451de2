package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Memory is an in-process Store backed by a map.
//
// Entries are never evicted, only overwritten; stale entries stay available
// for the fallback path. Key cardinality is bounded by real traffic (a few
// keyspaces times active players), so unbounded retention is acceptable.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*Entry),
	}
}

// Get retrieves the entry for key, fresh or stale.
func (m *Memory) Get(_ context.Context, key string) (*Entry, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	// Only fresh reads count as hits; stale reads are accounted by the
	// fallback counter on the fetch side.
	if entry.Fresh() {
		CacheHits.WithLabelValues("memory").Inc()
	}
	return entry, nil
}

// Set stores data under key with a freshness window of ttl.
func (m *Memory) Set(_ context.Context, key string, data json.RawMessage, ttl time.Duration) error {
	now := time.Now()
	entry := &Entry{
		Data:     data,
		CachedAt: now,
		Expires:  now.Add(ttl),
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()

	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
