// Package errors implements the two error classes this compiler raises:
// user errors (surfaced with a message and exit code) and internal
// invariant violations (trigger immediate abort with file/line context). It
// generalizes a Rust-styled, fatih/color-backed reporter away from
// source-position diagnostics
// (there is no source text once the input is already an IR module) and
// toward pass/node context.
package errors

import "fmt"

// Code identifies a user-facing error class; codes outside this set are
// not user errors.
type Code string

const (
	InvalidInput      Code = "InvalidInput"
	IrreducibleCfg    Code = "IrreducibleCfg"
	TypeMismatch      Code = "TypeMismatch"
	UndefinedReference Code = "UndefinedReference"
)

// ExitCode returns the process exit code assigned to this error class.
func (c Code) ExitCode() int {
	switch c {
	case InvalidInput, UndefinedReference, TypeMismatch:
		return 1
	case IrreducibleCfg:
		return 2
	default:
		return 1
	}
}

// UserError is a recoverable, user-facing error: bad input, an irreducible
// CFG, a type mismatch, or a dangling reference. The pass driver recovers
// these at the top level and reports them with the configured exit code;
// no pass may treat them as anything but fatal to the pipeline.
type UserError struct {
	Code    Code
	Message string
	// Context names the function/node/pass the error was raised from, for
	// example "function @transfer, block bb3".
	Context string
}

func (e *UserError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs a UserError.
func New(code Code, context, format string, args ...any) *UserError {
	return &UserError{Code: code, Message: fmt.Sprintf(format, args...), Context: context}
}

// InvariantViolation is the panic value raised by Invariant. It is never
// meant to be recovered by a pass — only by the driver's top-level
// boundary, which converts it into exit code 3: these indicate a
// programming error and must not be silently recoverable.
type InvariantViolation struct {
	Message string
	File    string
	Line    int
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("internal invariant violated at %s:%d: %s", v.File, v.Line, v.Message)
}
