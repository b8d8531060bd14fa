// Package errors provides structured error types for mortar.
//
// Two kinds of failure flow through this package. Contract violations
// inside the layout engine, such as touching a destroyed brick or setting
// a second cornerstone, are raised with panic and an *Error value since an
// invariant is already broken. Ordinary failures (bad config, malformed
// sketches, unknown formats) are returned as error values.
//
// # Error Codes
//
// Codes are grouped by prefix:
//   - INVALID_*: input validation failures
//   - NOT_FOUND, FILE_NOT_FOUND: missing nodes or files
//   - DESTROYED, CONTRACT_VIOLATION, NOT_QUIESCENT: layout engine failures
//   - INTERNAL_ERROR, UNSUPPORTED
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "width must be positive, got %d", w)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // ...
//	}
//
//	// Sketch errors carry the source position.
//	err := errors.New(errors.ErrCodeInvalidDocument, "empty node").At(pos.String())
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Layout engine
	ErrCodeDestroyed    Code = "DESTROYED"
	ErrCodeContract     Code = "CONTRACT_VIOLATION"
	ErrCodeNotQuiescent Code = "NOT_QUIESCENT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error. Pos names a place in a sketch ("doc.sketch:3:7")
// and is empty for errors that have none.
type Error struct {
	Code    Code
	Message string
	Pos     string
	Cause   error
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.detail()
}

func (e *Error) Unwrap() error { return e.Cause }

// At sets the source position and returns e.
func (e *Error) At(pos string) *Error {
	e.Pos = pos
	return e
}

// detail is the message with its position and cause, without the code.
func (e *Error) detail() string {
	var b strings.Builder
	if e.Pos != "" {
		b.WriteString(e.Pos)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(UserMessage(e.Cause))
	}
	return b.String()
}

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with code that wraps cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the outermost *Error in err's chain has code.
// Errors without an *Error in their chain match no code.
func Is(err error, code Code) bool {
	e, ok := asError(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns err without code prefixes: position, message and
// the messages of wrapped causes. Plain errors are returned as-is.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.detail()
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Violation panics with a CONTRACT_VIOLATION error.
func Violation(format string, args ...any) {
	panic(New(ErrCodeContract, format, args...))
}

// Destroyed panics with a DESTROYED error naming the object kind.
func Destroyed(kind string) {
	panic(New(ErrCodeDestroyed, "%s used after destruction", kind))
}

// Recover turns a panic raised by Violation or Destroyed back into an
// error and re-raises anything else. Call it deferred:
//
//	defer errors.Recover(&err)
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		*err = e
		return
	}
	panic(r)
}
