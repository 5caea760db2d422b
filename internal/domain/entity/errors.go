package entity

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain layer operations.
var (
	// ErrAuthRequired indicates that the action needs an authenticated session.
	// It is returned before any network call is made.
	ErrAuthRequired = errors.New("authentication required")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is makes validation errors match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NetworkError means the request never produced a response: connection refused,
// DNS failure, timeout, or an open circuit breaker.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Retryable reports that a lost request is worth one more attempt.
func (e *NetworkError) Retryable() bool { return true }

// HTTPError is a non-2xx response. Message holds the server-provided message
// when the body carried one, otherwise it is empty.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether the status indicates a transient server condition.
func (e *HTTPError) Retryable() bool {
	switch {
	case e.StatusCode >= 500 && e.StatusCode < 600:
		return true
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode == http.StatusRequestTimeout:
		return true
	default:
		return false
	}
}

// DecodeError means a response arrived but its payload could not be understood.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Retryable is false: the same payload would be malformed again.
func (e *DecodeError) Retryable() bool { return false }

// ServerMessage extracts the server-provided message from err, if any.
func ServerMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return ""
}

// MessageOrFallback returns the server-provided message carried by err, the
// message of a local validation failure, or fallback when there is neither.
func MessageOrFallback(err error, fallback string) string {
	if msg := ServerMessage(err); msg != "" {
		return msg
	}
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	return fallback
}
