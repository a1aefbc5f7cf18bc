package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors represent business rule violations.
// They are distinct from infrastructure errors (storage, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Content Errors
	// ===========================================

	// ErrArticleNotFound indicates the requested article does not exist.
	ErrArticleNotFound = errors.New("article not found")

	// ErrSlugTaken indicates a live article already uses the slug.
	ErrSlugTaken = errors.New("slug already in use")

	// ===========================================
	// Authentication/Authorization Errors
	// ===========================================

	// ErrAuthRequired indicates no valid session exists.
	ErrAuthRequired = errors.New("authentication required")

	// ErrOwnerRequired indicates the caller is not the owner.
	ErrOwnerRequired = errors.New("owner access required")

	// ErrAccessDenied indicates the user does not have permission.
	ErrAccessDenied = errors.New("access denied")

	// ErrTooManyAttempts indicates the login rate limit was reached.
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., article id, slug).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}

// ValidationError carries one message per invalid input field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns nil when fields is empty.
func NewValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Error implements the error interface. Fields are listed in name order.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message for name, or "" when the field is valid.
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

// AsValidationError extracts a ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// FieldErrors converts per-field errors, such as the map returned by
// ozzo-validation, into a ValidationError. It returns nil for an empty map.
func FieldErrors(errs map[string]error) error {
	fields := make(map[string]string, len(errs))
	for name, err := range errs {
		if err != nil {
			fields[name] = err.Error()
		}
	}
	return NewValidationError(fields)
}
