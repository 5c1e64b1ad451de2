// Package enka provides the HTTP client for the Enka showcase API, covering
// the Genshin Impact, Honkai: Star Rail and Zenless Zone Zero endpoints.
package enka

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meostore/showcase-proxy/pkg/keyspace"
	"github.com/meostore/showcase-proxy/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for Enka API calls.
var (
	enkaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enka_requests_total",
		Help: "Total Enka API requests by game and status",
	}, []string{"game", "status"})

	enkaRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "enka_request_duration_seconds",
		Help:    "Enka API request duration in seconds by game",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"game"})
)

// DefaultBaseURL is the public Enka API host.
const DefaultBaseURL = "https://enka.network"

// DefaultTimeout bounds a single showcase request.
const DefaultTimeout = 10 * time.Second

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API host; overridable for tests.
	BaseURL string

	// UserAgent sent with every request.
	UserAgent string

	// Timeout per request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   DefaultTimeout,
	}
}

// Client fetches showcase payloads from the Enka API.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new Enka client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logging.NewLogger("enka-client"),
	}, nil
}

// showcasePath returns the API path for a game's showcase endpoint.
func showcasePath(game keyspace.Game, uid int64) (string, error) {
	switch game {
	case keyspace.GenshinImpact:
		return fmt.Sprintf("/api/uid/%d", uid), nil
	case keyspace.StarRail:
		return fmt.Sprintf("/api/hsr/uid/%d", uid), nil
	case keyspace.ZenlessZoneZero:
		return fmt.Sprintf("/api/zzz/uid/%d", uid), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}
}

// FetchShowcase retrieves the showcase payload for a UID.
// The payload is opaque to the proxy and returned verbatim.
func (c *Client) FetchShowcase(ctx context.Context, game keyspace.Game, uid int64) (json.RawMessage, error) {
	path, err := showcasePath(game, uid)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	enkaRequestDuration.WithLabelValues(string(game)).Observe(time.Since(start).Seconds())

	if err != nil {
		enkaRequestsTotal.WithLabelValues(string(game), "network_error").Inc()
		if isTimeout(err) {
			c.logger.Warn().
				Str("game", string(game)).
				Int64("uid", uid).
				Msg("Showcase request timed out")
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		c.logger.Error().Err(err).
			Str("game", string(game)).
			Int64("uid", uid).
			Msg("Showcase request failed")
		return nil, fmt.Errorf("enka request: %w", err)
	}
	defer resp.Body.Close()

	enkaRequestsTotal.WithLabelValues(string(game), fmt.Sprintf("%d", resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn().
			Str("game", string(game)).
			Int64("uid", uid).
			Int("status", resp.StatusCode).
			Msg("Enka API error")
		return nil, &APIError{
			Game:       game,
			UID:        uid,
			StatusCode: resp.StatusCode,
		}
	}

	c.logger.Debug().
		Str("game", string(game)).
		Int64("uid", uid).
		Dur("duration", time.Since(start)).
		Msg("Fetched showcase")

	return body, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
