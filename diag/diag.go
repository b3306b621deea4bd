// Package diag implements the compiler's single error taxonomy:
// source-anchored fatal errors, rendered as the source followed by a
// caret line carrying the message, plus internal-invariant panics.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// SourceError is a fatal, source-anchored diagnostic. It renders as
// the source line, then a caret line pointing at Offset with the
// message after the caret.
type SourceError struct {
	// Source is the full original source text.
	Source string

	// Offset is the byte offset the caret should point at.
	Offset int

	// msg is the formatted diagnostic message.
	msg string

	// cause is an optional wrapped lower-level error.
	cause error
}

// NewSourceError builds a SourceError anchored at offset within src.
func NewSourceError(src string, offset int, format string, args ...interface{}) *SourceError {
	return &SourceError{
		Source: src,
		Offset: offset,
		msg:    fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a lower-level cause to e, returning e for chaining.
func (e *SourceError) Wrap(cause error) *SourceError {
	e.cause = cause
	return e
}

// Error implements the error interface, producing the two-line
// source/caret diagnostic, plus a third line with the wrapped cause
// when there is one.
func (e *SourceError) Error() string {
	col := e.Offset
	if col < 0 {
		col = 0
	}
	caret := fmt.Sprintf("%s^ %s", spaces(col), e.msg)
	if e.cause != nil {
		return fmt.Sprintf("%s\n%s\n%s", e.Source, caret, e.cause.Error())
	}
	return fmt.Sprintf("%s\n%s", e.Source, caret)
}

// Cause implements github.com/pkg/errors's causer interface so that
// errors.Cause(err) unwraps to the lower-level failure, if any, behind
// this diagnostic.
func (e *SourceError) Cause() error {
	return e.cause
}

// Unwrap supports the standard library's errors.Is/errors.As.
func (e *SourceError) Unwrap() error {
	return e.cause
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// TokenError builds a SourceError anchored at offset, for reporting an
// error against a *token.Token (passed as tok.Offset, keeping this
// package leaf-level and free of a dependency on the token package).
// It is equivalent to NewSourceError.
func TokenError(src string, offset int, format string, args ...interface{}) *SourceError {
	return NewSourceError(src, offset, format, args...)
}

// InternalError indicates a compiler-bug-level invariant violation
// (e.g. codegen's push/pop depth not returning to zero). Code that
// detects one panics with NewInternalError(...); codegen.Generate
// recovers the panic and returns it as an ordinary error.
type InternalError struct {
	msg string
}

// NewInternalError builds an InternalError.
func NewInternalError(format string, args ...interface{}) *InternalError {
	return &InternalError{msg: fmt.Sprintf(format, args...)}
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.msg
}

// Wrapf is a thin re-export of github.com/pkg/errors.Wrapf for
// annotating a lower-level error (e.g. a failed strconv parse).
func Wrapf(cause error, format string, args ...interface{}) error {
	return errors.Wrapf(cause, format, args...)
}
