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

// rendering indicates a document (PDF/XLSX/HTML) could not be produced.
// No partial output accompanies it.
type rendering struct {
	err error
}

func NewRenderingError(err error) error {
	return &rendering{err: err}
}

func (r rendering) Error() string {
	if r.err == nil {
		return "rendering failed"
	}
	return "rendering failed: " + r.err.Error()
}

func IsRendering(err error) bool {
	_, ok := errors.Cause(err).(*rendering)
	return ok
}
