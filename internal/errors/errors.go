// Package errors provides structured error handling with context propagation and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/zd8899/isitjustme/internal/domain"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeUnauthorized indicates missing or bad credentials (HTTP 401)
	TypeUnauthorized ErrorType = "unauthorized"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeConflict indicates a resource conflict, transient and retryable (HTTP 409)
	TypeConflict ErrorType = "conflict"
	// TypeRateLimited indicates the caller exceeded the vote rate knob (HTTP 429)
	TypeRateLimited ErrorType = "rate_limited"
	// TypeInternal indicates server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeUnauthorized:
		return http.StatusUnauthorized
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeRateLimited:
		return http.StatusTooManyRequests
	case TypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return &Error{Type: TypeValidation, Message: message, Context: make(map[string]any)}
}

// UnauthorizedError creates a new unauthorized error (HTTP 401).
func UnauthorizedError(message string) *Error {
	return &Error{Type: TypeUnauthorized, Message: message, Context: make(map[string]any)}
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message, Context: make(map[string]any)}
}

// ConflictError creates a new conflict error (HTTP 409).
func ConflictError(message string) *Error {
	return &Error{Type: TypeConflict, Message: message, Context: make(map[string]any)}
}

// RateLimitedError creates a new rate-limited error (HTTP 429).
func RateLimitedError(message string) *Error {
	return &Error{Type: TypeRateLimited, Message: message, Context: make(map[string]any)}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{Type: TypeInternal, Message: message, Cause: cause, Context: make(map[string]any)}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Type: e.Type, Context: e.Context}
}

// FromDomain maps domain sentinel errors onto structured errors at the
// transport boundary. Unknown errors become internal errors.
func FromDomain(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidVoteValue):
		return ValidationError("vote value must be +1 or -1").withCause(err)
	case errors.Is(err, domain.ErrInvalidVoterIdentity):
		return ValidationError("voter identity is missing or ambiguous").withCause(err)
	case errors.Is(err, domain.ErrTargetNotFound):
		return NotFoundError("vote target does not exist").withCause(err)
	case errors.Is(err, domain.ErrPostNotFound):
		return NotFoundError("post does not exist").withCause(err)
	case errors.Is(err, domain.ErrCommentNotFound):
		return NotFoundError("comment does not exist").withCause(err)
	case errors.Is(err, domain.ErrUserNotFound):
		return NotFoundError("user does not exist").withCause(err)
	case errors.Is(err, domain.ErrInvalidPostContent):
		return ValidationError("post title or body is invalid").withCause(err)
	case errors.Is(err, domain.ErrInvalidCommentContent):
		return ValidationError("comment body is invalid").withCause(err)
	case errors.Is(err, domain.ErrConcurrentModification):
		return ConflictError("vote was modified concurrently, retry").withCause(err)
	case errors.Is(err, domain.ErrUsernameTaken):
		return ConflictError("username already taken").withCause(err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return UnauthorizedError("invalid credentials").withCause(err)
	case errors.Is(err, domain.ErrRateLimited):
		return RateLimitedError("too many votes, slow down").withCause(err)
	default:
		return InternalError("internal server error", err)
	}
}

func (e *Error) withCause(err error) *Error {
	e.Cause = err
	return e
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged. Otherwise it is mapped
// through FromDomain.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return FromDomain(err)
}
