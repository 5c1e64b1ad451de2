package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meostore/showcase-proxy/pkg/enka"
	"github.com/meostore/showcase-proxy/pkg/keyspace"
)

// Common errors returned by the orchestrator.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrNoLoader is returned for a keyspace without a registered loader.
	ErrNoLoader = errors.New("no loader for keyspace")
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
}

// DefaultRetryConfig returns the default retry configuration:
// two retries after the initial attempt, no delay between attempts.
// Upstream calls are infrequent enough that immediate retry is acceptable.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
	}
}

// temporary is implemented by upstream errors that may succeed on retry.
type temporary interface {
	Temporary() bool
}

// retriable reports whether an error is transient.
// Client-side upstream errors (4xx) and programming errors (unknown
// keyspace) fail fast; timeouts, transport errors and 5xx are retried.
func retriable(err error) bool {
	if errors.Is(err, ErrNoLoader) || errors.Is(err, enka.ErrUnknownGame) || errors.Is(err, context.Canceled) {
		return false
	}
	var tmp temporary
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	return true
}

// refresh invokes the loader with retry. On final failure it returns the
// last observed error wrapped so the cause stays inspectable.
func (c *Coalescer) refresh(ctx context.Context, game keyspace.Game, id int64, loader Loader) (json.RawMessage, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		data, err := loader(ctx, id)
		if err == nil {
			if attempt > 1 {
				c.logger.Info().
					Str("keyspace", string(game)).
					Int64("id", id).
					Int("attempt", attempt).
					Msg("Upstream fetch succeeded after retry")
			}
			return data, nil
		}

		lastErr = err

		if !retriable(err) {
			c.logger.Debug().Err(err).
				Str("keyspace", string(game)).
				Int64("id", id).
				Msg("Permanent upstream error, not retrying")
			return nil, err
		}

		if attempt < c.retry.MaxAttempts {
			retriesTotal.WithLabelValues(string(game)).Inc()
			c.logger.Warn().Err(err).
				Str("keyspace", string(game)).
				Int64("id", id).
				Int("attempt", attempt).
				Msg("Upstream fetch failed, retrying")
		}
	}

	retryExhaustedTotal.WithLabelValues(string(game)).Inc()
	c.logger.Warn().Err(lastErr).
		Str("keyspace", string(game)).
		Int64("id", id).
		Int("max_attempts", c.retry.MaxAttempts).
		Msg("Retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, c.retry.MaxAttempts, lastErr)
}
