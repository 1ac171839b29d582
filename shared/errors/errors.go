package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Client errors (4xx equivalent)
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeInvalidInput ErrorType = "INVALID_INPUT"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypePrecondition ErrorType = "PRECONDITION_FAILED"

	// Server errors (5xx equivalent)
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrorTypeTimeout     ErrorType = "TIMEOUT"

	// Chain RPC and wallet errors
	ErrorTypeFetchFailure      ErrorType = "FETCH_FAILURE"
	ErrorTypeAborted           ErrorType = "ABORTED"
	ErrorTypeMalformedResponse ErrorType = "MALFORMED_RESPONSE"
	ErrorTypeWalletUnavailable ErrorType = "WALLET_UNAVAILABLE"
	ErrorTypeViewFailure       ErrorType = "VIEW_FAILURE"
)

// Error represents a structured error with context
type Error struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Stack      []string               `json:"-"`
	Cause      error                  `json:"-"`
	StatusCode int                    `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

func captureStack() []string {
	var stack []string
	for i := 2; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn != nil && !strings.Contains(fn.Name(), "runtime.") {
			stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		}
	}
	return stack
}

// New creates a new error
func New(errorType ErrorType, code, message string) *Error {
	e := &Error{
		Type:    errorType,
		Code:    code,
		Message: message,
		Stack:   captureStack(),
	}

	switch errorType {
	case ErrorTypeNotFound:
		e.StatusCode = http.StatusNotFound
	case ErrorTypeInvalidInput:
		e.StatusCode = http.StatusBadRequest
	case ErrorTypeRateLimited:
		e.StatusCode = http.StatusTooManyRequests
	case ErrorTypePrecondition, ErrorTypeWalletUnavailable:
		e.StatusCode = http.StatusPreconditionFailed
	case ErrorTypeTimeout:
		e.StatusCode = http.StatusGatewayTimeout
	case ErrorTypeAborted:
		// 499 is the de facto "client closed request" status.
		e.StatusCode = 499
	case ErrorTypeUnavailable, ErrorTypeFetchFailure, ErrorTypeMalformedResponse, ErrorTypeViewFailure:
		e.StatusCode = http.StatusBadGateway
	default:
		e.StatusCode = http.StatusInternalServerError
	}

	return e
}

// Common error constructors
func InvalidInput(field string, reason string) *Error {
	return New(ErrorTypeInvalidInput, "INVALID_INPUT",
		fmt.Sprintf("Invalid input for field '%s': %s", field, reason)).
		WithDetails("field", field).
		WithDetails("reason", reason)
}

func Internal(message string) *Error {
	return New(ErrorTypeInternal, "INTERNAL_ERROR", message)
}

func Unavailable(service string, reason string) *Error {
	return New(ErrorTypeUnavailable, "UNAVAILABLE",
		fmt.Sprintf("%s unavailable: %s", service, reason)).
		WithDetails("service", service)
}

// FetchFailure is returned when the RPC answers with a non-2xx status.
// The response body is kept verbatim for diagnostics.
func FetchFailure(statusCode int, body string) *Error {
	return New(ErrorTypeFetchFailure, "FETCH_FAILURE",
		fmt.Sprintf("rpc responded with status %d", statusCode)).
		WithDetails("status_code", statusCode).
		WithDetails("body", body)
}

// Aborted marks a fetch that stopped because its context was cancelled.
func Aborted(cause error) *Error {
	return New(ErrorTypeAborted, "ABORTED_FETCH", "fetch aborted by caller").WithCause(cause)
}

func MalformedResponse(what string, cause error) *Error {
	return New(ErrorTypeMalformedResponse, "MALFORMED_RESPONSE",
		fmt.Sprintf("malformed %s response", what)).
		WithDetails("response", what).
		WithCause(cause)
}

func WalletUnavailable() *Error {
	return New(ErrorTypeWalletUnavailable, "WALLET_UNAVAILABLE", "wallet provider is not available")
}

// ViewFailure carries an error reported inside a 2xx view response body.
func ViewFailure(function string, message string) *Error {
	return New(ErrorTypeViewFailure, "VIEW_FAILURE",
		fmt.Sprintf("view %s failed: %s", function, message)).
		WithDetails("function", function)
}

// FetchFailureStatus returns the upstream status code carried by a FETCH_FAILURE error.
func FetchFailureStatus(err error) (int, bool) {
	var e *Error
	if !stderrors.As(err, &e) || e.Type != ErrorTypeFetchFailure {
		return 0, false
	}
	code, ok := e.Details["status_code"].(int)
	return code, ok
}

// IsTransportFailure reports whether err came from the network layer
// rather than from an HTTP response.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr)
}

// IsCancellation reports whether err is a context cancellation or deadline.
func IsCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// Handle turns an arbitrary error into a structured one for surfaces
// (HTTP, CLI) that need a status code.
func Handle(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return New(ErrorTypeTimeout, "TIMEOUT", "operation timed out").WithCause(err)
	case stderrors.Is(err, context.Canceled):
		return Aborted(err)
	case IsTransportFailure(err):
		return Unavailable("rpc", "transport failure").WithCause(err)
	default:
		return Internal(err.Error()).WithCause(err)
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == errorType
	}
	return false
}
