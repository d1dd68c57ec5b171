// Package lexer turns expression source text into a token stream.
//
// The lexer is the first line of the sandbox: it rejects over-long input,
// banned control characters, dangerous invocation-like substrings, and
// deny-listed identifiers before any parsing happens, and it bounds the
// total token count so downstream stages see input of known size.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"hexbind/enclave/pkg/expr"
	exprErrors "hexbind/enclave/pkg/expr/errors"
	"hexbind/enclave/pkg/expr/sandbox"
	"hexbind/enclave/pkg/expr/token"
)

// multi-character operators, longest first so maximal munch wins.
var multiCharOperators = []string{
	"===", "!==",
	"==", "!=", "<=", ">=", "&&", "||",
}

// singleCharOperators are the one-character operators, including the ternary
// question mark.
const singleCharOperators = "+-*/%<>!?"

// Lexer tokenizes expression source text under a set of resource ceilings.
type Lexer struct {
	maxLength int
	maxTokens int
}

// New creates a lexer enforcing the given limits.
func New(limits expr.Limits) *Lexer {
	return &Lexer{
		maxLength: limits.MaxExpressionLength,
		maxTokens: limits.MaxTokenCount,
	}
}

// Tokenize scans source into a token stream ending with an EOF token.
//
// It fails with a resource limit error when the source or token count
// exceeds its ceiling, a security error when the source contains a dangerous
// pattern or a deny-listed identifier, and a syntax error for anything
// lexically malformed. Syntax errors carry a context snippet with a caret
// pointing at the failing column.
func (l *Lexer) Tokenize(source string) ([]token.Token, error) {
	if len(source) > l.maxLength {
		return nil, exprErrors.NewResourceLimit(fmt.Sprintf(
			"expression length %d exceeds maximum %d", len(source), l.maxLength))
	}

	if pos := sandbox.BannedControlCharacter(source); pos >= 0 {
		return nil, exprErrors.NewSyntaxWithSnippet(
			"banned control character in expression", pos, source)
	}

	if pattern := sandbox.DangerousPattern(source); pattern != "" {
		return nil, exprErrors.NewSecurity(fmt.Sprintf(
			"expression contains dangerous pattern %q", pattern), -1)
	}

	var tokens []token.Token
	pos := 0

	for pos < len(source) {
		// Skip whitespace between tokens.
		r, size := utf8.DecodeRuneInString(source[pos:])
		if unicode.IsSpace(r) {
			pos += size
			continue
		}

		tok, next, err := l.scanToken(source, pos)
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
		pos = next

		if len(tokens) > l.maxTokens {
			return nil, exprErrors.NewResourceLimit(fmt.Sprintf(
				"expression produces more than %d tokens", l.maxTokens))
		}
	}

	tokens = append(tokens, token.Token{Kind: token.KindEOF, Pos: len(source)})
	return tokens, nil
}

// scanToken scans one token starting at pos. Token patterns are attempted in
// a fixed priority order: number, string, keyword (boolean/null), identifier,
// operator, then single-character punctuation.
func (l *Lexer) scanToken(source string, pos int) (token.Token, int, error) {
	c := source[pos]

	switch {
	case c >= '0' && c <= '9':
		return l.scanNumber(source, pos)

	case c == '\'' || c == '"':
		return l.scanString(source, pos)

	case isIdentStart(rune(c)):
		return l.scanIdentifier(source, pos)
	}

	for _, op := range multiCharOperators {
		if strings.HasPrefix(source[pos:], op) {
			return token.Token{Kind: token.KindOperator, Text: op, Pos: pos}, pos + len(op), nil
		}
	}

	if strings.ContainsRune(singleCharOperators, rune(c)) {
		return token.Token{Kind: token.KindOperator, Text: string(c), Pos: pos}, pos + 1, nil
	}

	switch c {
	case '.':
		return token.Token{Kind: token.KindDot, Text: ".", Pos: pos}, pos + 1, nil
	case '(':
		return token.Token{Kind: token.KindLParen, Text: "(", Pos: pos}, pos + 1, nil
	case ')':
		return token.Token{Kind: token.KindRParen, Text: ")", Pos: pos}, pos + 1, nil
	case '[':
		return token.Token{Kind: token.KindLBracket, Text: "[", Pos: pos}, pos + 1, nil
	case ']':
		return token.Token{Kind: token.KindRBracket, Text: "]", Pos: pos}, pos + 1, nil
	case ':':
		return token.Token{Kind: token.KindColon, Text: ":", Pos: pos}, pos + 1, nil
	}

	return token.Token{}, 0, exprErrors.NewSyntaxWithSnippet(fmt.Sprintf(
		"unexpected character %q", string(source[pos])), pos, source)
}

// scanNumber scans an integer or decimal literal.
func (l *Lexer) scanNumber(source string, pos int) (token.Token, int, error) {
	end := pos
	for end < len(source) && source[end] >= '0' && source[end] <= '9' {
		end++
	}

	// Optional fraction; require at least one digit after the dot so that
	// member access on a number stays unambiguous.
	if end+1 < len(source) && source[end] == '.' && source[end+1] >= '0' && source[end+1] <= '9' {
		end++
		for end < len(source) && source[end] >= '0' && source[end] <= '9' {
			end++
		}
	}

	return token.Token{Kind: token.KindNumber, Text: source[pos:end], Pos: pos}, end, nil
}

// scanString scans a quoted string literal with backslash escapes. The
// returned token text is the decoded content without quotes.
func (l *Lexer) scanString(source string, pos int) (token.Token, int, error) {
	quote := source[pos]
	var sb strings.Builder
	i := pos + 1

	for i < len(source) {
		c := source[i]

		if c == quote {
			return token.Token{Kind: token.KindString, Text: sb.String(), Pos: pos}, i + 1, nil
		}

		if c == '\\' {
			if i+1 >= len(source) {
				break
			}
			switch source[i+1] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(source[i+1])
			}
			i += 2
			continue
		}

		sb.WriteByte(c)
		i++
	}

	return token.Token{}, 0, exprErrors.NewSyntaxWithSnippet(
		"unterminated string literal", pos, source)
}

// scanIdentifier scans an identifier or keyword and enforces the identifier
// deny-list.
func (l *Lexer) scanIdentifier(source string, pos int) (token.Token, int, error) {
	end := pos
	for end < len(source) && isIdentPart(rune(source[end])) {
		end++
	}
	name := source[pos:end]

	switch name {
	case "true", "false":
		return token.Token{Kind: token.KindBoolean, Text: name, Pos: pos}, end, nil
	case "null":
		return token.Token{Kind: token.KindNull, Text: name, Pos: pos}, end, nil
	}

	if sandbox.BlockedName(name) {
		return token.Token{}, 0, exprErrors.NewSecurity(fmt.Sprintf(
			"identifier %q is not allowed", name), pos)
	}

	return token.Token{Kind: token.KindIdentifier, Text: name, Pos: pos}, end, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

