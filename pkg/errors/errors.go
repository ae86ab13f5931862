// Package errors provides the coded errors of linevis.
//
// Every error that crosses a package boundary towards a host carries a
// [Code]. Codes fall into a [Class], and the class alone decides how a host
// reports the failure: the HTTP host maps it to a status with [HTTPStatus],
// the CLI to an exit code with [ExitCode].
//
//	err := errors.New(errors.ErrCodeInvalidDataset, "missing value column %q", col)
//	if errors.Is(err, errors.ErrCodeInvalidDataset) {
//	    // the input is at fault
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidSettings, cause, "load %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidDataset  Code = "INVALID_DATASET"
	ErrCodeInvalidSettings Code = "INVALID_SETTINGS"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidLineKey  Code = "INVALID_LINE_KEY"
	ErrCodeInvalidViewport Code = "INVALID_VIEWPORT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidEvent    Code = "INVALID_EVENT"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Class groups codes by who is at fault.
type Class int

const (
	ClassInternal    Class = iota // a bug or an environment failure
	ClassInvalid                  // the caller's input
	ClassNotFound                 // a named resource is missing
	ClassUnsupported              // valid, but not available in this build or host
)

var classes = map[Code]Class{
	ErrCodeInvalidInput:    ClassInvalid,
	ErrCodeInvalidDataset:  ClassInvalid,
	ErrCodeInvalidSettings: ClassInvalid,
	ErrCodeInvalidFormat:   ClassInvalid,
	ErrCodeInvalidLineKey:  ClassInvalid,
	ErrCodeInvalidViewport: ClassInvalid,
	ErrCodeInvalidPath:     ClassInvalid,
	ErrCodeInvalidEvent:    ClassInvalid,
	ErrCodeNotFound:        ClassNotFound,
	ErrCodeFileNotFound:    ClassNotFound,
	ErrCodeUnsupported:     ClassUnsupported,
}

// Class returns the class of c. Unknown codes are internal.
func (c Code) Class() Class { return classes[c] }

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with code and a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ClassOf returns the class of err's code.
func ClassOf(err error) Class { return GetCode(err).Class() }

// UserMessage returns the message of a coded error without its code prefix
// and cause, or err.Error() for anything else.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus returns the status the HTTP host replies with for err.
func HTTPStatus(err error) int {
	switch ClassOf(err) {
	case ClassInvalid:
		return http.StatusBadRequest
	case ClassNotFound:
		return http.StatusNotFound
	case ClassUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode returns the CLI exit status for err: 0 for nil, 2 when the
// caller's input or a named file is at fault, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch ClassOf(err) {
	case ClassInvalid, ClassNotFound:
		return 2
	default:
		return 1
	}
}
