// Package errors defines the typed error taxonomy for the expression engine.
//
// Four error kinds are surfaced to callers: syntax (malformed expression),
// security (blocked identifier, property, or dangerous pattern), resource
// limit (a structural ceiling was exceeded), and division by zero. Ordinary
// missing-data conditions are not errors; the evaluator returns a soft
// "no value" result for those instead.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes an expression engine error.
type ErrorType string

const (
	// ErrorTypeSyntax indicates a malformed expression.
	ErrorTypeSyntax ErrorType = "syntax"

	// ErrorTypeSecurity indicates a blocked identifier, blocked property,
	// or dangerous input pattern. Security errors are always surfaced and
	// never degraded silently, since a silent degrade would mask an
	// attempted sandbox escape.
	ErrorTypeSecurity ErrorType = "security"

	// ErrorTypeResourceLimit indicates that a structural ceiling (length,
	// token count, recursion depth) was exceeded.
	ErrorTypeResourceLimit ErrorType = "resource_limit"

	// ErrorTypeDivisionByZero indicates division by an exact zero divisor.
	ErrorTypeDivisionByZero ErrorType = "division_by_zero"
)

// Error is a typed expression engine error with an optional source position
// and context snippet.
type Error struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable message
	Pos     int       // Byte offset in the source, -1 if unknown
	Snippet string    // Context snippet with a caret at the failing column
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))

	if e.Pos >= 0 {
		sb.WriteString(fmt.Sprintf(" (at position %d)", e.Pos))
	}

	if e.Snippet != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Snippet)
	}

	return sb.String()
}

// NewSyntax creates a syntax error at the given position.
func NewSyntax(message string, pos int) *Error {
	return &Error{Type: ErrorTypeSyntax, Message: message, Pos: pos}
}

// NewSyntaxWithSnippet creates a syntax error carrying a context snippet
// that points at the failing column of the source.
func NewSyntaxWithSnippet(message string, pos int, source string) *Error {
	return &Error{
		Type:    ErrorTypeSyntax,
		Message: message,
		Pos:     pos,
		Snippet: Snippet(source, pos),
	}
}

// NewSecurity creates a security error at the given position.
func NewSecurity(message string, pos int) *Error {
	return &Error{Type: ErrorTypeSecurity, Message: message, Pos: pos}
}

// NewResourceLimit creates a resource limit error.
func NewResourceLimit(message string) *Error {
	return &Error{Type: ErrorTypeResourceLimit, Message: message, Pos: -1}
}

// NewDivisionByZero creates a division-by-zero error at the given position.
func NewDivisionByZero(pos int) *Error {
	return &Error{Type: ErrorTypeDivisionByZero, Message: "division by zero", Pos: pos}
}

// TypeOf returns the ErrorType of err, or an empty string if err is not an
// engine error.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsType reports whether err is an engine error of the given type.
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// snippetRadius is how many characters of context surround the failing
// column in a snippet.
const snippetRadius = 20

// Snippet renders a short excerpt of source around pos with a caret marking
// the failing column.
func Snippet(source string, pos int) string {
	if pos < 0 || len(source) == 0 {
		return ""
	}
	if pos > len(source) {
		pos = len(source)
	}

	start := pos - snippetRadius
	if start < 0 {
		start = 0
	}
	end := pos + snippetRadius
	if end > len(source) {
		end = len(source)
	}

	var sb strings.Builder
	sb.WriteString("  | ")
	sb.WriteString(source[start:end])
	sb.WriteString("\n  | ")
	sb.WriteString(strings.Repeat(" ", pos-start))
	sb.WriteString("^")

	return sb.String()
}
