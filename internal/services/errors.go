package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies registry failures so the HTTP layer can map them to
// status codes.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindAlreadyExists   ErrorKind = "ALREADY_EXISTS"
	KindVersionConflict ErrorKind = "VERSION_CONFLICT"
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT"
	KindInternal        ErrorKind = "INTERNAL"
)

// Error is the typed failure returned by every registry operation.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func internalError(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind carried by err, or KindInternal for anything that
// is not a registry error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool        { return err != nil && KindOf(err) == KindNotFound }
func IsAlreadyExists(err error) bool   { return err != nil && KindOf(err) == KindAlreadyExists }
func IsVersionConflict(err error) bool { return err != nil && KindOf(err) == KindVersionConflict }
