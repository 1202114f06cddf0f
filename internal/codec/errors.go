package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch means stored text cannot be coerced to the declared type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnsupportedType means the codec has no rule for a shape.
	ErrUnsupportedType = errors.New("unsupported type")
)

// Error wraps a sentinel error with additional context
type Error struct {
	err     error  // The underlying sentinel error
	context string // Additional error context
}

// Error satisfies the error interface
func (e *Error) Error() string {
	if e.context == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.err.Error(), e.context)
}

// Unwrap implements the errors.Unwrap interface for compatibility with errors.Is/As
func (e *Error) Unwrap() error {
	return e.err
}

// newError creates a new codec error with context
func newError(err error, format string, args ...interface{}) *Error {
	return &Error{
		err:     err,
		context: fmt.Sprintf(format, args...),
	}
}
