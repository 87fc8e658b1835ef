// Package errors provides standardized error handling for the SPARQL client.
// It includes error classification, typed protocol errors, and helper
// functions for consistent error wrapping across the module.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that a caller may retry
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Connection lifecycle errors
	ErrNotConnected     = errors.New("transport not connected")
	ErrAlreadyConnected = errors.New("transport already connected")
	ErrRequestInFlight  = errors.New("request already in flight")
	ErrConnectionClosed = errors.New("connection closed")

	// Configuration errors
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrMissingEndpoint = errors.New("missing endpoint URL")

	// Query construction errors
	ErrEmptyProjection = errors.New("empty result projection")
	ErrNegativeLimit   = errors.New("limit cannot be negative")
	ErrNegativeOffset  = errors.New("offset cannot be negative")
)

// ConnectionError indicates the endpoint could not be resolved or the
// transport handshake failed. The call is fatal; no request was sent.
type ConnectionError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error
func (e *ConnectionError) Unwrap() error { return e.Err }

// TransportError indicates a mid-stream I/O failure after the request was
// sent. The response may be partially accumulated; the call is fatal.
type TransportError struct {
	Err error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError indicates the cumulative receive budget was exhausted before
// the response completed.
type TimeoutError struct {
	Budget string // human-readable budget, e.g. "30s"
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Budget == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out after %s", e.Budget)
}

// HTTPError indicates the endpoint was reachable but answered with a
// non-2xx status. Body is preserved verbatim for diagnostics.
type HTTPError struct {
	Status int
	Body   []byte
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	body := string(e.Body)
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("endpoint returned HTTP %d: %s", e.Status, body)
}

// MalformedResponseError indicates the response payload did not match any
// recognized SPARQL results shape.
type MalformedResponseError struct {
	Detail string
}

// Error implements the error interface
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed SPARQL response: %s", e.Detail)
}

// CoercionError indicates a typed literal's lexical value does not match its
// declared datatype. Row is -1 when the error occurred outside row decoding.
type CoercionError struct {
	Variable string
	Value    string
	Datatype string
	Row      int
}

// Error implements the error interface
func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q as %s for variable %q",
		e.Value, e.Datatype, e.Variable)
}

// CloseError indicates the transport release failed. The result already
// observed by the caller still stands; cleanup is best-effort.
type CloseError struct {
	Err error
}

// Error implements the error interface
func (e *CloseError) Error() string {
	return fmt.Sprintf("connection close failed: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *CloseError) Unwrap() error { return e.Err }

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient from a caller's perspective
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error first
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	// Protocol errors with transient character
	var connErr *ConnectionError
	var transErr *TransportError
	var timeoutErr *TimeoutError
	if errors.As(err, &connErr) || errors.As(err, &transErr) || errors.As(err, &timeoutErr) {
		return true
	}

	// A 5xx answer may succeed later; a 4xx will not
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 500
	}

	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// IsInvalid checks if an error is due to invalid input or payload
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	var malformedErr *MalformedResponseError
	var coercionErr *CoercionError
	if errors.As(err, &malformedErr) || errors.As(err, &coercionErr) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 400 && httpErr.Status < 500
	}

	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingEndpoint) ||
		errors.Is(err, ErrEmptyProjection) ||
		errors.Is(err, ErrNegativeLimit) ||
		errors.Is(err, ErrNegativeOffset)
}

// IsFatal checks if an error is fatal and should stop processing
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return false
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}

	if IsInvalid(err) {
		return ErrorInvalid
	}
	if IsFatal(err) {
		return ErrorFatal
	}

	// Default to transient so callers outside this module may retry
	return ErrorTransient
}

// newClassified creates a new classified error
// This is an internal helper - use WrapTransient(), WrapFatal(), or WrapInvalid() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// As reports whether any error in err's chain matches target, assigning it
// when it does. Re-exported so call sites need only one errors import.
func As(err error, target any) bool { return errors.As(err, target) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// New returns an error with the given text.
func New(text string) error { return errors.New(text) }
