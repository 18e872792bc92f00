// Package apperr holds the error kinds shared by the project workspace and
// the analysis job engine. Callers classify errors with errors.Is against
// the sentinels; the helpers wrap a sentinel with a formatted message.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrDecode     = errors.New("decode error")
	ErrValidation = errors.New("validation error")
	ErrExecution  = errors.New("execution failure")
)

// NotFound returns an error wrapping ErrNotFound.
func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

// Decode returns an error wrapping ErrDecode.
func Decode(format string, args ...any) error {
	return wrap(ErrDecode, format, args...)
}

// Validation returns an error wrapping ErrValidation.
func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

// Execution wraps cause as an ErrExecution. The cause stays reachable
// through errors.Is / errors.As.
func Execution(cause error) error {
	if cause == nil {
		return ErrExecution
	}
	return fmt.Errorf("%w: %w", ErrExecution, cause)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Kind reports which sentinel err wraps, or nil when it wraps none of them.
func Kind(err error) error {
	for _, k := range []error{ErrNotFound, ErrValidation, ErrDecode, ErrExecution} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
