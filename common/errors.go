// Package common defines the error taxonomy shared by the repository,
// session and service layers. Callers should match with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Input failed a shape or length rule. Returned as *ValidationError.
	ErrValidation = errors.New("validation error")

	ErrDuplicateEmail = errors.New("email already registered")

	// Unknown email and wrong password both map here.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Item absent or owned by someone else.
	ErrNotFound = errors.New("not found")

	ErrStoreUnavailable = errors.New("store unavailable")

	// No live session behind the request.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a backend failure so that it matches ErrStoreUnavailable
// while keeping the driver error reachable through errors.As.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
