// Package result provides the two-variant outcome type used as the only
// error-propagation mechanism across the client core. Failures are values:
// nothing in the core panics or returns a raw error past its boundary.
package result

import "github.com/skyflydev/threadly-go/pkg/apperr"

// Unit is the value type for operations that succeed without a payload.
type Unit struct{}

// Result holds either a success value or a classified error, never both.
type Result[T any] struct {
	value T
	err   *apperr.Error
}

// Ok wraps a success value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err wraps a classified error.
func Err[T any](err *apperr.Error) Result[T] {
	if err == nil {
		err = apperr.Unknown("nil error wrapped in result")
	}
	return Result[T]{err: err}
}

// IsOk reports whether the result holds a success value.
func (r Result[T]) IsOk() bool { return r.err == nil }

// Get unwraps the result into its two branches. The value is only
// meaningful when the returned error is nil.
func (r Result[T]) Get() (T, *apperr.Error) { return r.value, r.err }

// Err returns the error branch, nil on success.
func (r Result[T]) Err() *apperr.Error { return r.err }

// OnSuccess runs fn with the value if the result is successful and returns
// the original result unchanged, for chaining.
func (r Result[T]) OnSuccess(fn func(T)) Result[T] {
	if r.err == nil && fn != nil {
		fn(r.value)
	}
	return r
}

// OnError runs fn with the error if the result failed and returns the
// original result unchanged, for chaining.
func (r Result[T]) OnError(fn func(*apperr.Error)) Result[T] {
	if r.err != nil && fn != nil {
		fn(r.err)
	}
	return r
}

// Map transforms the success value and passes errors through unchanged.
// It is a package function because Go methods cannot add type parameters.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(fn(r.value))
}

// Discard collapses a result to Unit, keeping the error branch intact.
func Discard[T any](r Result[T]) Result[Unit] {
	if r.err != nil {
		return Err[Unit](r.err)
	}
	return Ok(Unit{})
}
