package idv

import "fmt"

// StatusError is a non-2xx response from the vendor endpoint.
// Body is the vendor's raw response so it can be forwarded unmasked.
type StatusError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("idv vendor status %d", e.StatusCode)
}

// Temporary reports whether the error is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500
}
