package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// ErrUpstreamUnavailable marks a transport failure talking to the storefront backend:
	// timeouts, refused connections and undecodable responses all collapse into it.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// UpstreamError is a business failure reported by the backend, either as
// `success: false` or as an HTTP error carrying a JSON message.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
}
