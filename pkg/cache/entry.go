package cache

import (
	"encoding/json"
	"time"
)

// Entry represents a cached upstream payload.
type Entry struct {
	// Data is the serialized upstream payload, passed through verbatim.
	Data json.RawMessage `json:"data"`

	// CachedAt is when the payload was written.
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry stops being fresh. A stale entry stays in
	// the store for fallback use until it is overwritten.
	Expires time.Time `json:"expires"`
}

// Fresh returns true while the entry is within its TTL.
func (e *Entry) Fresh() bool {
	return time.Now().Before(e.Expires)
}

// Age returns how long ago the entry was written.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CachedAt)
}
