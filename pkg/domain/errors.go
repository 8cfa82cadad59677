package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store
// or the session has expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrDuplicateEmail is returned by a user store when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrUserNotFound is returned when a user ID cannot be resolved.
var ErrUserNotFound = errors.New("user not found")

// ErrPolicyNotFound is returned when a policy ID is not in the catalog.
var ErrPolicyNotFound = errors.New("policy not found")

// ErrInvalidToken is returned when a bearer or refresh token is unknown or expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrInvalidCredentials is returned when an email and password pair does not match an active user.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrUnavailable marks a downstream collaborator (search, generation) that cannot serve the request.
var ErrUnavailable = errors.New("service unavailable")

// ValidationError describes user input that is malformed or out of range.
// It is always recoverable: the dialogue re-prompts instead of aborting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-scoped validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
