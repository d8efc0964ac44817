package api

import "errors"

// errNoReason stands in when Unavailable is built from a nil error.
var errNoReason = errors.New("remote unavailable")

// Result is the outcome of a remote analysis call: either Success carrying
// a value or Unavailable carrying the reason. Callers pick the fallback.
type Result[T any] struct {
	value  T
	reason error
	ok     bool
}

// Success wraps a value returned by the remote service.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Unavailable records why the remote service could not provide a value.
func Unavailable[T any](reason error) Result[T] {
	if reason == nil {
		reason = errNoReason
	}
	return Result[T]{reason: reason}
}

// Get returns the value and whether the call succeeded.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.ok
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.ok
}

// Reason is nil on success.
func (r Result[T]) Reason() error {
	return r.reason
}
