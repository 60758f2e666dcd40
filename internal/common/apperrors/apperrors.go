// Package apperrors provides error values that carry an HTTP status code and
// support wrapping. Packages derive their error taxonomy from a base error and
// refine it with New and Msg; errors.Is works across the whole chain.
package apperrors

import (
	"errors"
	"strings"
)

// Error extends the standard error interface with status code management and
// error chaining. All methods return Error to support method chaining.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // creates a new error using current as template
	Msg(msg string) Error                  // creates a new error with message, wrapping the original
	MsgErr(msg string, err ...error) Error // creates error with message and wraps extra errors
	Err(err ...error) Error                // attaches additional errors to the current error
	SetStatusCode(int) Error               // sets the HTTP status code
	StatusCode() int                       // returns the current status code
	ErrorAll() string                      // returns the message including wrapped errors
	UnwrapAll() []error                    // returns all wrapped errors
}

type appError struct {
	msg        string
	base       error
	wrapped    []error
	statuscode int
}

// New creates a root-level error with the given message.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	return e.msg
}

// ErrorAll returns the message followed by the messages of all wrapped errors.
func (e *appError) ErrorAll() string {
	if len(e.wrapped) == 0 {
		return e.msg
	}
	var b strings.Builder
	b.WriteString(e.msg)
	for _, err := range e.wrapped {
		if err.Error() == e.msg {
			continue
		}
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.wrapped
}

// New creates a fresh error using the current error as a template.
// The new error inherits the status code but starts with a new message.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statuscode: e.statuscode,
	}
}

// Msg creates a new error with a new message and wraps the original error.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		wrapped:    append([]error{e}, e.wrapped...),
		statuscode: e.statuscode,
	}
}

// MsgErr creates a new error with a message and wraps additional errors.
func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:        msg,
		base:       e,
		wrapped:    append([]error{e}, errs...),
		statuscode: e.statuscode,
	}
}

// Err creates a new error by attaching additional errors to the current one.
// The message and status code are retained.
func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:        e.msg,
		base:       e,
		wrapped:    append([]error{e}, errs...),
		statuscode: e.statuscode,
	}
}

// SetStatusCode returns a shallow copy with an updated status code.
func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

// Is checks the base error and all wrapped errors for a match.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrapped {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StatusCodeOf returns the HTTP status code carried by err, or 0 when err is
// not an apperrors.Error or carries none. Useful for retry predicates.
func StatusCodeOf(err error) int {
	var appErr Error
	if errors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	return 0
}
