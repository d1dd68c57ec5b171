package logging

import "strings"

// redactMaxLength bounds how much of an expression appears in a log record.
const redactMaxLength = 120

// RedactExpression prepares an expression source string for logging. String
// literal contents are masked, since context values interpolated into
// expressions by callers can carry user data, and the result is truncated to
// a bounded length.
func RedactExpression(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))

	inString := false
	var quote byte
	escaped := false

	for i := 0; i < len(source); i++ {
		c := source[i]

		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case quote:
				sb.WriteString("***")
				sb.WriteByte(quote)
				inString = false
			}
			continue
		}

		if c == '\'' || c == '"' {
			inString = true
			quote = c
			escaped = false
			sb.WriteByte(c)
			continue
		}

		sb.WriteByte(c)
	}

	// An unterminated literal still masks everything after the quote.
	if inString {
		sb.WriteString("***")
	}

	out := sb.String()
	if len(out) > redactMaxLength {
		out = out[:redactMaxLength] + "..."
	}
	return out
}
