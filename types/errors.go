package types

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnauthorized       ErrorKind = "UNAUTHORIZED"
	KindValidation         ErrorKind = "VALIDATION_ERROR"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindUpstream           ErrorKind = "UPSTREAM_FAILURE"
	KindServiceUnavailable ErrorKind = "SERVICE_UNAVAILABLE"
	KindBadRequest         ErrorKind = "BAD_REQUEST"
	KindInternal           ErrorKind = "INTERNAL_ERROR"
)

// AppError is a failure that is safe to show to the caller. Cause is kept
// for logging only.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details map[string]string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

func NewError(kind ErrorKind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func ValidationError(details map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: "Validation failed", Details: details}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func TaskFailure(err *AppError) TaskResult {
	return TaskResult{Error: err.Message, Details: err.Details, Err: err}
}

func SessionFailure(err *AppError) SessionResult {
	return SessionResult{Error: err.Message, Details: err.Details, Err: err}
}
