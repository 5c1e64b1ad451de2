// Package idv provides the client for the NetEase Identity V role-lookup
// endpoint. The endpoint is a plain HTTP GET; responses are passed through
// to callers verbatim, including error bodies.
package idv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/meostore/showcase-proxy/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	idvRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idv_requests_total",
		Help: "Total Identity V role-lookup requests by status",
	}, []string{"status"})

	idvRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "idv_request_duration_seconds",
		Help:    "Identity V role-lookup request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})
)

// DefaultBaseURL is the NetEase gameclub payment host.
const DefaultBaseURL = "https://pay.neteasegames.com"

// loginRolePath is the role-lookup endpoint under the gameclub host.
const loginRolePath = "/gameclub/identityv/2001/login-role"

// DefaultTimeout bounds a single lookup request.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is the browser-like agent the endpoint expects.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// Config holds the client configuration.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}
}

// Client performs Identity V role lookups.
// Construct once at startup and Close at shutdown.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new Identity V client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logging.NewLogger("idv-client"),
	}, nil
}

// LookupRole fetches role information for a role ID.
// Non-2xx vendor responses are returned as *StatusError carrying the
// vendor's status code and raw body so handlers can forward them unmasked.
func (c *Client) LookupRole(ctx context.Context, roleID int64) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("roleid", strconv.FormatInt(roleID, 10))
	query.Set("client_type", "gameclub")

	reqURL := c.config.BaseURL + loginRolePath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	idvRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		idvRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().Err(err).Int64("roleid", roleID).Msg("Role lookup failed")
		return nil, fmt.Errorf("idv request: %w", err)
	}
	defer resp.Body.Close()

	idvRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn().
			Int64("roleid", roleID).
			Int("status", resp.StatusCode).
			Msg("Vendor returned error status")
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	c.logger.Debug().
		Int64("roleid", roleID).
		Dur("duration", time.Since(start)).
		Msg("Role lookup succeeded")

	return body, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
