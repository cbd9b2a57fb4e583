package scan

import (
	"errors"
	"fmt"
)

// TakeoffError provides structured error information for scan operations.
type TakeoffError struct {
	Op      string // Operation that failed (e.g., "Run", "ClearIdentifiers")
	Entity  string // Entity type (e.g., "state", "identifier", "group")
	ID      string // Entity identifier (if applicable)
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *TakeoffError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %q: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Entity, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TakeoffError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *TakeoffError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building TakeoffErrors.
type ErrorBuilder struct {
	err TakeoffError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: TakeoffError{Op: op}}
}

// State sets the entity to "state" with the store path.
func (b *ErrorBuilder) State(path string) *ErrorBuilder {
	b.err.Entity = "state"
	b.err.ID = path
	return b
}

// Identifier sets the entity to "identifier" with the identity key.
func (b *ErrorBuilder) Identifier(key string) *ErrorBuilder {
	b.err.Entity = "identifier"
	b.err.ID = key
	return b
}

// Group sets the entity to "group".
func (b *ErrorBuilder) Group() *ErrorBuilder {
	b.err.Entity = "group"
	return b
}

// WithContext adds additional context to the error.
func (b *ErrorBuilder) WithContext(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error and returns the built error.
func (b *ErrorBuilder) Cause(err error) error {
	b.err.Cause = err
	return &b.err
}
