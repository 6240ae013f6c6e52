package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	// Status is the remote HTTP status for upstream errors, zero otherwise.
	Status int
	Cause  error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds. Every AppError built by the constructors below wraps exactly one of them.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUpstream            = errors.New("upstream error")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrPersistence         = errors.New("persistence error")
)

const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUpstreamError       = "UPSTREAM_ERROR"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodePersistenceError    = "PERSISTENCE_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func InvalidInputError(message string, cause error) *AppError {
	return NewAppError(CodeInvalidInput, message, withKind(ErrInvalidInput, cause))
}

func UpstreamError(status int, message string, cause error) *AppError {
	e := NewAppError(CodeUpstreamError, message, withKind(ErrUpstream, cause))
	e.Status = status
	return e
}

func UpstreamUnavailableError(message string, cause error) *AppError {
	return NewAppError(CodeUpstreamUnavailable, message, withKind(ErrUpstreamUnavailable, cause))
}

func PersistenceError(message string, cause error) *AppError {
	return NewAppError(CodePersistenceError, message, withKind(ErrPersistence, cause))
}

// KindOf returns the error kind wrapped by err, or nil if err is unclassified.
func KindOf(err error) error {
	for _, kind := range []error{ErrInvalidInput, ErrUpstreamUnavailable, ErrUpstream, ErrPersistence} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func withKind(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
