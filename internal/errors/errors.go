// Package errors carries coded, user-facing errors for gatewatch.
//
// Components return *Error when a failure needs to reach a person: the CLI
// prints the full block, while long-running loops log the one-line form
// from Line.
package errors

import (
	"errors"
	"strings"
)

// Codes group failures by the part of the system that raised them.
const (
	ErrConfig    = "CONFIG"
	ErrProvider  = "PROVIDER"
	ErrTransport = "TRANSPORT"
	ErrSensor    = "SENSOR"
)

// Error is a failure with a short headline, an optional underlying cause
// and an optional hint for the operator.
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New returns an Error without a cause.
func New(code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion}
}

// WrapWithCode returns an Error caused by err.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion, Cause: err}
}

// Error renders the terminal block: a ✗ headline followed by the cause and
// the hint, each indented on its own paragraph.
func (e *Error) Error() string {
	blocks := []string{"✗ " + e.Message}
	if e.Cause != nil {
		blocks = append(blocks, "  "+e.Cause.Error())
	}
	if e.Suggestion != "" {
		blocks = append(blocks, "  "+e.Suggestion)
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// Line renders the headline and cause on a single line for log output.
// The hint is left out.
func (e *Error) Line() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + flatten(e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err, or anything it wraps, is an *Error with code.
func IsCode(err error, code string) bool {
	var target *Error
	return errors.As(err, &target) && target.Code == code
}

// Line returns err as one log-friendly line. *Error values drop their
// hint; anything else has its newlines folded.
func Line(err error) string {
	if err == nil {
		return ""
	}
	var target *Error
	if errors.As(err, &target) {
		return target.Line()
	}
	return flatten(err)
}

func flatten(err error) string {
	var target *Error
	if errors.As(err, &target) {
		return target.Line()
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}
