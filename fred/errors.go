package fred

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid fred configuration")
	// ErrUnauthorized indicates the API key was rejected
	ErrUnauthorized = errors.New("unauthorized: invalid API key")
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")
	// ErrPageLimit indicates pagination stopped at the configured page cap
	ErrPageLimit = errors.New("page limit reached")
)

// APIError represents an error response from the FRED API
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("fred API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure.
// FRED answers a bad api_key with a 400 whose message names the key.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		e.StatusCode == http.StatusForbidden ||
		(e.StatusCode == http.StatusBadRequest && containsFold(e.Message, "api_key"))
}

// Unwrap maps the error onto the package sentinels so errors.Is works
func (e *APIError) Unwrap() error {
	switch {
	case e.IsUnauthorized():
		return ErrUnauthorized
	case e.IsNotFound():
		return ErrNotFound
	}
	return nil
}

// PageLimitError reports where pagination was cut off
type PageLimitError struct {
	ReleaseID int
	Pages     int
	Items     int
}

func (e *PageLimitError) Error() string {
	return fmt.Sprintf("release %d: stopped after %d pages (%d series): %v", e.ReleaseID, e.Pages, e.Items, ErrPageLimit)
}

func (e *PageLimitError) Unwrap() error {
	return ErrPageLimit
}
