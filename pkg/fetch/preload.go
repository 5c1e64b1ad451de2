package fetch

import (
	"context"
	"sync"

	"github.com/meostore/showcase-proxy/pkg/keyspace"
)

// WarmTarget is one (keyspace, identifier) pair to preload.
type WarmTarget struct {
	Game keyspace.Game
	ID   int64
}

// Warm populates the cache for a fixed set of targets in parallel.
// Failures are logged per target and never abort the remaining warm-ups.
// Callers that must not block run it in a goroutine.
func (c *Coalescer) Warm(ctx context.Context, targets []WarmTarget) {
	if len(targets) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(target WarmTarget) {
			defer wg.Done()
			if _, _, err := c.Fetch(ctx, target.Game, target.ID); err != nil {
				c.logger.Warn().Err(err).
					Str("keyspace", string(target.Game)).
					Int64("id", target.ID).
					Msg("Warm-up fetch failed")
				return
			}
			c.logger.Debug().
				Str("keyspace", string(target.Game)).
				Int64("id", target.ID).
				Msg("Warm-up fetch done")
		}(target)
	}
	wg.Wait()

	c.logger.Info().Int("targets", len(targets)).Msg("Cache warm-up finished")
}
