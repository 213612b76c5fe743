// Package apperr holds the error taxonomy shared by every domain package.
// Domain sentinels wrap one of these so handlers can map them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication required")
	ErrAuthorization  = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrUpstream       = errors.New("upstream failure")
	ErrInternal       = errors.New("internal error")
)

// New builds a sentinel that reads as msg and matches kind.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Validation wraps a formatted message as a validation error.
func Validation(format string, args ...any) error {
	return New(ErrValidation, fmt.Sprintf(format, args...))
}

// Upstream marks err as a failure of an external collaborator.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: ErrUpstream, msg: op, cause: err}
}

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *kindError) Is(target error) bool { return target == e.kind }

func (e *kindError) Unwrap() error { return e.cause }

// Code returns the machine-readable code for err's kind.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrAuthentication):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrAuthorization):
		return "FORBIDDEN"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrUpstream):
		return "UPSTREAM_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
