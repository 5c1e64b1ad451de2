package enka

import (
	"errors"
	"fmt"
	"net"

	"github.com/meostore/showcase-proxy/pkg/keyspace"
)

// Common errors returned by the client.
var (
	// ErrTimeout is returned when a showcase request exceeds its deadline.
	ErrTimeout = errors.New("enka request timeout")

	// ErrUnknownGame is returned for a keyspace with no showcase endpoint.
	ErrUnknownGame = errors.New("unknown game")
)

// APIError represents a non-2xx response from the Enka API.
type APIError struct {
	Game       keyspace.Game
	UID        int64
	StatusCode int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("enka %s uid %d: upstream status %d", e.Game, e.UID, e.StatusCode)
}

// Temporary reports whether the error is worth retrying.
// 4xx responses (wrong UID, hidden showcase) never change between immediate
// retries; 5xx responses can.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500
}

// isTimeout reports whether a transport error was a timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
