package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// StaleRetention is how long an entry outlives its freshness TTL in Redis.
// The physical key TTL is freshness + retention, so stale entries remain
// readable for the fallback path without explicit timestamp bookkeeping on
// the read side.
const StaleRetention = 24 * time.Hour

// Redis is a Store backed by a Redis instance.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed store.
func NewRedis(client *redis.Client) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &Redis{
		client: client,
	}
}

// Get retrieves the entry for key, fresh or stale.
// A payload that fails to decode is treated as a miss so the caller
// refetches instead of serving garbage.
func (r *Redis) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	if entry.Fresh() {
		CacheHits.WithLabelValues("redis").Inc()
	}
	return &entry, nil
}

// Set stores data under key with a freshness window of ttl.
// The key itself expires after ttl+StaleRetention so Redis garbage-collects
// entries that are too old even for fallback use.
func (r *Redis) Set(ctx context.Context, key string, data json.RawMessage, ttl time.Duration) error {
	now := time.Now()
	entry := &Entry{
		Data:     data,
		CachedAt: now,
		Expires:  now.Add(ttl),
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := r.client.Set(ctx, key, encoded, ttl+StaleRetention).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}
