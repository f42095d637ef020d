package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// An Error is a failure the provider signaled over HTTP.
// Status carries the provider's HTTP status code so callers can
// translate well-known codes without string matching.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider: %d: %s", e.Status, e.Message)
}

// StatusOf pulls the provider HTTP status out of err.
// If err is not an *Error, StatusOf returns 0.
func StatusOf(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Status
	}

	return 0
}

// MessageOf pulls the provider's message out of err,
// falling back to err.Error() for non-provider errors.
func MessageOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Message
	}

	return err.Error()
}

// IsRateLimited asserts whether the provider rejected the call
// for exceeding its rate limits.
func IsRateLimited(err error) bool {
	return StatusOf(err) == http.StatusTooManyRequests
}

// IsUnauthorized asserts whether the provider rejected the session tokens.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}
