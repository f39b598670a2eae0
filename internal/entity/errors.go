package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the base of every validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAliasExists is returned when a custom alias is already taken.
	ErrAliasExists = errors.New("alias exists")
	// ErrURLNotFound is returned when no URL matches the requested identifier.
	ErrURLNotFound = errors.New("url not found")
	// ErrUnauthorized is returned when a passkey or bearer token is rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError describes rejected input. It unwraps to ErrInvalidInput.
type ValidationError struct {
	Field  string // Field is the request field the reason applies to.
	Reason string // Reason is a human-readable explanation safe to show to clients.
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
