package twitter

import (
	"errors"
	"fmt"
)

// Remote-call error taxonomy. RateLimited is credential-specific and
// recoverable by rotation; anything else from the API surface is transient
// and retried on the next cycle.
var (
	ErrRateLimited = errors.New("rate limited")
	ErrNotFound    = errors.New("not found")
)

// APIError is a structured error returned by the platform API.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("twitter api error: status=%d code=%d message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("twitter api error: status=%d", e.StatusCode)
}

// Unwrap maps status codes onto the sentinel taxonomy so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 429:
		return ErrRateLimited
	case 404:
		return ErrNotFound
	}
	return nil
}

// IsRateLimited reports whether err carries the platform's rate-limit
// signal.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
