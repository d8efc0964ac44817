package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx response from the remote service.
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote error (status %d): %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// MessageOf returns the display message carried by a remote error response,
// or fallback when err carries none. Transport errors never leak through.
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsStatus reports whether err is a remote error with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
