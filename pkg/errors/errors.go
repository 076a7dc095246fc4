package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates missing, invalid or expired credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCriteria indicates the user has no saved search criteria
	ErrNoCriteria = errors.New("no search criteria")

	// ErrBusy indicates a discovery transition was rejected because a
	// fetch is already in flight
	ErrBusy = errors.New("request already in flight")

	// ErrNoCandidate indicates the current candidate slot is empty
	ErrNoCandidate = errors.New("no candidate available")

	// ErrServerError indicates the backend failed to serve the request
	ErrServerError = errors.New("server error")
)

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// UnauthorizedError creates an unauthorized error with context
func UnauthorizedError(reason string) error {
	if reason != "" {
		return fmt.Errorf("%s: %w", reason, ErrUnauthorized)
	}
	return ErrUnauthorized
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// ServerError creates a server error with context
func ServerError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrServerError)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
