package edamam

import (
	"errors"
	"fmt"
)

// Common errors returned by the Edamam client.
var (
	// ErrMissingCredentials indicates the app ID or app key was not configured.
	ErrMissingCredentials = errors.New("edamam app_id and app_key are required")

	// ErrAuthError indicates the credentials were rejected.
	ErrAuthError = errors.New("edamam authentication error")

	// ErrRateLimited indicates the API rate limit has been exceeded.
	ErrRateLimited = errors.New("edamam rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with edamam")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from edamam")
)

// APIError represents a non-200 response from the search API.
type APIError struct {
	StatusCode int
	Message    string
	Query      string
}

func (e *APIError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("edamam API error (status %d): %s (query: %s)", e.StatusCode, e.Message, e.Query)
	}
	return fmt.Sprintf("edamam API error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) || errors.Is(err, ErrMissingCredentials) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
