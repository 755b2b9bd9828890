package model

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyBook is returned by RemoveBest on an empty side book.
	ErrEmptyBook = errors.New("book is empty")
	// ErrInvariant marks a broken book or order invariant. It is a programmer
	// error and is always returned wrapped with the offending detail.
	ErrInvariant = errors.New("invariant violated")
)

// ValidationError is a malformed request: the caller's fault, expected, and
// handled at the boundary. The order is never created or admitted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ExecutionError is an attempt to execute more than an order has left.
// Reaching it means the matching loop is broken; it is never clamped.
type ExecutionError struct {
	OrderID   string
	Volume    decimal.Decimal
	Remaining decimal.Decimal
	Message   string
}

func (e *ExecutionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("cannot execute %s, remaining: %s", e.Volume, e.Remaining)
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsExecution reports whether err is, or wraps, an *ExecutionError.
func IsExecution(err error) bool {
	var e *ExecutionError
	return errors.As(err, &e)
}
