package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := NewSyntax("unexpected token", 5)

	msg := err.Error()
	if !strings.Contains(msg, "[syntax]") {
		t.Errorf("Expected error type in message, got %q", msg)
	}
	if !strings.Contains(msg, "position 5") {
		t.Errorf("Expected position in message, got %q", msg)
	}
}

func TestError_NoPositionOmitted(t *testing.T) {
	err := NewResourceLimit("too many tokens")
	if strings.Contains(err.Error(), "position") {
		t.Errorf("Expected no position for -1, got %q", err.Error())
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		err      error
		expected ErrorType
	}{
		{NewSyntax("x", 0), ErrorTypeSyntax},
		{NewSecurity("x", 0), ErrorTypeSecurity},
		{NewResourceLimit("x"), ErrorTypeResourceLimit},
		{NewDivisionByZero(0), ErrorTypeDivisionByZero},
		{errors.New("plain"), ""},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := TypeOf(tt.err); got != tt.expected {
			t.Errorf("TypeOf(%v) = %q, expected %q", tt.err, got, tt.expected)
		}
	}
}

func TestTypeOf_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("evaluation failed: %w", NewSecurity("blocked", 3))

	if !IsType(wrapped, ErrorTypeSecurity) {
		t.Error("Expected wrapped error to keep its type")
	}
}

func TestSnippet_CaretPosition(t *testing.T) {
	source := "1 + @ + 2"
	snippet := Snippet(source, 4)

	lines := strings.Split(snippet, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected two snippet lines, got %d", len(lines))
	}

	// The caret must sit under the offending column.
	caretCol := strings.Index(lines[1], "^")
	sourceCol := strings.Index(lines[0], "@")
	if caretCol != sourceCol {
		t.Errorf("Caret at column %d, offending character at %d\n%s", caretCol, sourceCol, snippet)
	}
}

func TestSnippet_LongSourceWindowed(t *testing.T) {
	source := strings.Repeat("x", 200)
	snippet := Snippet(source, 100)

	if len(snippet) > 120 {
		t.Errorf("Expected a windowed snippet, got %d characters", len(snippet))
	}
}

func TestSnippet_EdgeCases(t *testing.T) {
	if Snippet("", 0) != "" {
		t.Error("Expected empty snippet for empty source")
	}
	if Snippet("abc", -1) != "" {
		t.Error("Expected empty snippet for negative position")
	}
	if Snippet("abc", 10) == "" {
		t.Error("Expected snippet for position clamped past end")
	}
}
