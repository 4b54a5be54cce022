package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// FallbackMessage is shown whenever the analysis service could not be reached
// or answered with something that is not a JSON object.
const FallbackMessage = "Falha na conexão com o servidor."

// ErrorKind separates "the service understood the request and rejected it"
// from "the request never completed".
type ErrorKind string

const (
	// KindService marks an error reported by the analysis service itself
	KindService ErrorKind = "service"

	// KindTransport marks a network failure or an undecodable response
	KindTransport ErrorKind = "transport"
)

// Rejected submissions. Neither changes controller state.
var (
	// ErrEmptyVariant is the ValidationSkip case: nothing to analyze
	ErrEmptyVariant = errors.New("variant is empty")

	// ErrRequestInFlight is returned while a submission is still loading
	ErrRequestInFlight = errors.New("an analysis request is already in flight")

	// ErrNotSettled is returned by Reset while a submission is loading
	ErrNotSettled = errors.New("cannot reset while a request is in flight")
)

// ErrResponseTooLarge is the cause of a transport failure whose body
// exceeded the client's read limit
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// AnalysisError is the terminal failure of a submission
type AnalysisError struct {
	// Kind categorizes the error
	Kind ErrorKind `json:"kind"`

	// Message is what the user sees. Verbatim from the service for
	// KindService, FallbackMessage for KindTransport.
	Message string `json:"message"`

	// StatusCode of the HTTP response, zero when none was received
	StatusCode int `json:"status_code,omitempty"`

	// RequestID correlates the failure with server logs
	RequestID string `json:"request_id,omitempty"`

	// Cause is the underlying error for transport failures
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	parts := []string{fmt.Sprintf("kind=%s", e.Kind)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is matches another *AnalysisError of the same kind
func (e *AnalysisError) Is(target error) bool {
	if ae, ok := target.(*AnalysisError); ok {
		return e.Kind == ae.Kind
	}
	return false
}

// IsService reports whether the service rejected the request
func (e *AnalysisError) IsService() bool {
	return e.Kind == KindService
}

// IsTransport reports whether the request never completed
func (e *AnalysisError) IsTransport() bool {
	return e.Kind == KindTransport
}

// NewServiceError creates an error carrying a service supplied message
func NewServiceError(message string, statusCode int) *AnalysisError {
	return &AnalysisError{
		Kind:       KindService,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewTransportError creates an error with the fixed fallback message
func NewTransportError(cause error) *AnalysisError {
	return &AnalysisError{
		Kind:    KindTransport,
		Message: FallbackMessage,
		Cause:   cause,
	}
}

// AsAnalysisError converts any error into an *AnalysisError. Errors that are
// not already one become transport failures.
func AsAnalysisError(err error) *AnalysisError {
	if err == nil {
		return nil
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}
	return NewTransportError(err)
}

// IsServiceError checks if an error was reported by the service
func IsServiceError(err error) bool {
	var ae *AnalysisError
	return errors.As(err, &ae) && ae.IsService()
}

// IsTransportError checks if an error is a transport failure
func IsTransportError(err error) bool {
	var ae *AnalysisError
	return errors.As(err, &ae) && ae.IsTransport()
}
