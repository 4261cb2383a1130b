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
		return ""
	}
	return err.Err.Error()
}

// ErrorMessage normalizes any error to a single human-readable message
// suitable for API consumers. Diagnostic detail stays in the error chain
// for logging; it is never part of the returned message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := errors.Cause(err).Error(); msg != "" {
		return msg
	}
	return "Unexpected error"
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
