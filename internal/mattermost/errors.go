package mattermost

import (
	"errors"
	"fmt"
)

// Common errors returned by the Mattermost client.
var (
	// ErrInvalidCredential indicates a missing, invalid, or expired token.
	ErrInvalidCredential = errors.New("invalid or expired Mattermost token")

	// ErrAccessDenied indicates the token lacks access to the resource.
	ErrAccessDenied = errors.New("access denied by Mattermost server")

	// ErrNotFound indicates the resource was not found on the server.
	ErrNotFound = errors.New("not found on Mattermost server")

	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("Mattermost request timed out")

	// ErrConnection indicates the server could not be reached.
	ErrConnection = errors.New("could not connect to Mattermost server")

	// ErrValidation indicates bad input caught before any network call.
	ErrValidation = errors.New("invalid request parameters")

	// ErrInvalidResponse indicates an unexpected API response shape.
	ErrInvalidResponse = errors.New("invalid response from Mattermost server")
)

// APIError represents a non-2xx response outside the mapped status codes.
// It carries the status and body so the caller can retry by hand.
type APIError struct {
	StatusCode int
	Body       string
	Endpoint   string // For context in error messages
}

func (e *APIError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("Mattermost API error (status %d) on %s: %s", e.StatusCode, e.Endpoint, e.Body)
	}
	return fmt.Sprintf("Mattermost API error (status %d): %s", e.StatusCode, e.Body)
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsAuthError returns true if the error indicates a credential or access problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrInvalidCredential) || errors.Is(err, ErrAccessDenied) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsTimeout returns true if the error indicates a request deadline was hit.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsValidation returns true if the error was raised before any network call.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
