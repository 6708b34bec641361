package service

import (
	"errors"
	"fmt"

	"github.com/deeptattoo/deeptattoo-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP
// status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrDesignNotFound indicates the design does not exist or is hidden from the caller.
	ErrDesignNotFound = errors.New("design not found")

	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrStyleUnavailable indicates the requested style does not exist or is inactive.
	ErrStyleUnavailable = errors.New("style is not available")
)

// ServiceError wraps unexpected errors from a service operation with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_design")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// Known sentinels are returned directly, and store not-found errors are
// mapped to their service-level counterparts.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotOwned),
		errors.Is(err, ErrDesignNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrStyleUnavailable):
		return err
	case errors.Is(err, store.ErrDesignNotFound):
		return ErrDesignNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrStyleNotFound):
		return ErrStyleUnavailable
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
