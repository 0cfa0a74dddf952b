package deposit

import (
	"errors"
	"fmt"
)

// Common errors returned by the Zenodo client.
var (
	// ErrAuthError indicates a missing or rejected access token.
	ErrAuthError = errors.New("zenodo authentication error")

	// ErrRateLimited indicates the server refused the request for rate.
	ErrRateLimited = errors.New("zenodo rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with zenodo")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from zenodo")
)

// APIError represents any other non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zenodo API error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}
