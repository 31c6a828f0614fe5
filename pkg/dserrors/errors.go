// Package dserrors provides structured error handling for the column codec
// with error categorization, rich context, and stack traces. It keeps the
// two error kinds that matter to callers syntactically distinguishable:
// per-value rejections (recoverable, one bad row) and fatal I/O failures
// (unrecoverable for the file).
//
// # Basic Usage
//
//	// Reject a single value
//	err := dserrors.New(dserrors.ErrorTypeValue, "value out of range")
//
//	// Add context
//	err = err.WithDetail("type", "int32").WithDetail("value", v)
//
//	// Wrap an I/O failure
//	if err := f.Sync(); err != nil {
//	    return dserrors.Wrap(err, dserrors.ErrorTypeIO, "flush failed")
//	}
//
// # Error Kinds
//
// Use IsValueError to detect a recoverable per-value rejection (wrong type,
// out of range, unparseable text, non-ASCII byte) and IsFatal to detect an
// I/O failure after which the writer must not be used again. Nothing in
// this package is retried internally.
package dserrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType categorizes an error for handling strategy.
type ErrorType string

const (
	// ErrorTypeArgument represents bad construction options or other
	// caller mistakes detected before any value is processed.
	ErrorTypeArgument ErrorType = "argument"
	// ErrorTypeValue represents a single rejected value (wrong type or
	// range for the column's codec).
	ErrorTypeValue ErrorType = "value"
	// ErrorTypeOverflow represents a value with no representable analogue
	// in the target type.
	ErrorTypeOverflow ErrorType = "overflow"
	// ErrorTypeParse represents unparseable text input to a parsed codec.
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeIO represents a filesystem failure; fatal for a writer.
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeInternal represents internal invariant violations.
	ErrorTypeInternal ErrorType = "internal"
)

// Error is a structured error with context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is a single frame in the call stack captured at error creation.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error. Chainable.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message, capturing the
// call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error, preserving it as the cause. If the error is
// already a structured Error its stack trace is preserved. Returns nil if
// the input error is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existing.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType reports whether the error is of the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsValueError reports whether the error is a recoverable per-value
// rejection. A caller that sees a value error may keep writing; prior
// state is not corrupted.
func IsValueError(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Type {
	case ErrorTypeValue, ErrorTypeOverflow, ErrorTypeParse:
		return true
	default:
		return false
	}
}

// IsFatal reports whether the error is fatal for the file it occurred on.
// After a fatal error a writer refuses further writes.
func IsFatal(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Type {
	case ErrorTypeIO, ErrorTypeInternal:
		return true
	default:
		return false
	}
}

// captureStack captures the call stack, skipping the given number of frames.
func captureStack(skip int) []StackFrame {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]StackFrame, 0, n)
	for {
		frame, more := frames.Next()
		stack = append(stack, StackFrame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
	return stack
}
