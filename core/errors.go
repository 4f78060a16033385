package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// ErrorKind classifies domain errors so transports can map them to their own status codes.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindConflict
	KindInvalid
	KindUnauthorized
	KindUnprocessable
)

// Error is a domain error with a client-safe message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (err *Error) Error() string {
	return err.Message
}

func newError(kind ErrorKind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func NewNotFoundError(msg string) error      { return newError(KindNotFound, msg) }
func NewConflictError(msg string) error      { return newError(KindConflict, msg) }
func NewInvalidError(msg string) error       { return newError(KindInvalid, msg) }
func NewUnauthorizedError(msg string) error  { return newError(KindUnauthorized, msg) }
func NewUnprocessableError(msg string) error { return newError(KindUnprocessable, msg) }

// KindOf returns the ErrorKind of the root cause of err.
func KindOf(err error) ErrorKind {
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Kind
	}
	return KindInternal
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
