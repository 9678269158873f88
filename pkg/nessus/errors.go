package nessus

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a response that decoded but is missing a field the
// converter relies on. Callers treat it as "skip this record".
var ErrMalformedResponse = errors.New("malformed Nessus response")

// APIError represents a non-2xx answer from the Nessus API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Nessus API error (status %d): %s", e.StatusCode, e.Message)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
