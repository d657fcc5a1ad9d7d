package memoize

import "errors"

var (
	// ErrNotAFunction is returned when the value passed to New is not a non-nil func.
	ErrNotAFunction = errors.New("memoize: value is not a function")

	// ErrUnsupportedSignature is returned for functions whose results are not
	// R or (R, error), or whose deferred result type cannot be reconstructed.
	ErrUnsupportedSignature = errors.New("memoize: unsupported function signature")

	// ErrInvalidResultType is returned when a settled value cannot be assigned
	// to the result type of the memoized function.
	ErrInvalidResultType = errors.New("memoize: invalid result type")

	// ErrClosedWithoutValue is returned when a deferred channel result is
	// closed, or nil, before producing a value.
	ErrClosedWithoutValue = errors.New("memoize: deferred value closed without a value")

	// ErrPanic wraps a panic recovered from a background computation.
	ErrPanic = errors.New("memoize: computation panicked")
)
