// Package token defines the lexical tokens produced by the expression lexer.
package token

import "fmt"

// Kind identifies the lexical class of a token.
type Kind string

const (
	KindNumber     Kind = "number"
	KindString     Kind = "string"
	KindBoolean    Kind = "boolean"
	KindNull       Kind = "null"
	KindIdentifier Kind = "identifier"
	KindOperator   Kind = "operator"
	KindDot        Kind = "dot"
	KindLParen     Kind = "lparen"
	KindRParen     Kind = "rparen"
	KindLBracket   Kind = "lbracket"
	KindRBracket   Kind = "rbracket"
	KindColon      Kind = "colon"
	KindEOF        Kind = "eof"
)

// Token is a single lexical token. Tokens are immutable once produced;
// for string tokens Text holds the decoded (unquoted) content.
type Token struct {
	Kind Kind
	Text string
	Pos  int // byte offset in the source expression
}

// Is reports whether the token has the given kind.
func (t Token) Is(kind Kind) bool {
	return t.Kind == kind
}

// IsOperator reports whether the token is an operator with the given text.
func (t Token) IsOperator(text string) bool {
	return t.Kind == KindOperator && t.Text == text
}

// String returns a human-readable representation for error messages.
func (t Token) String() string {
	if t.Kind == KindEOF {
		return "end of expression"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
