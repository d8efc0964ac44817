// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound          = errors.New("not found")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Remote API errors.
	ErrOffline          = errors.New("remote API disabled (offline mode)")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrMalformedPayload = errors.New("malformed response payload")

	// Input errors.
	ErrInvalidInput     = errors.New("invalid analysis input")
	ErrUnsupportedImage = errors.New("unsupported image type")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
// Error returns only the display message; the cause stays reachable
// through errors.Unwrap so transport details are never printed verbatim.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
