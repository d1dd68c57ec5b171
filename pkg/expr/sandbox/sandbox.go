// Package sandbox holds the deny-lists shared by the lexer and the context
// sanitizer. Keeping them in one place guarantees the two enforcement points
// can never drift apart.
package sandbox

import "strings"

// blockedIdentifiers are names an expression may never reference and a
// sanitized context may never expose. The list targets global/host objects,
// code execution entry points, and prototype-pollution vectors.
var blockedIdentifiers = map[string]struct{}{
	"globalthis":     {},
	"window":         {},
	"self":           {},
	"top":            {},
	"parent":         {},
	"frames":         {},
	"document":       {},
	"location":       {},
	"navigator":      {},
	"eval":           {},
	"function":       {},
	"settimeout":     {},
	"setinterval":    {},
	"fetch":          {},
	"xmlhttprequest": {},
	"import":         {},
	"require":        {},
	"process":        {},
	"localstorage":   {},
	"sessionstorage": {},
	"indexeddb":      {},
	"prototype":      {},
	"constructor":    {},
	"__proto__":      {},
}

// dangerousPatterns are substrings that reject an entire expression before
// tokenization. They match invocation-like and host-access shapes that no
// legitimate template expression contains. All entries must be lowercase.
var dangerousPatterns = []string{
	"eval(",
	"function(",
	"settimeout(",
	"setinterval(",
	"fetch(",
	"import(",
	"require(",
	"xmlhttprequest",
	"globalthis.",
	"window.",
	"document.",
	"location.",
	"navigator.",
	"process.",
	"child_process",
	"javascript:",
	"vbscript:",
	"<script",
}

// blockedSubstrings reject any identifier or property name containing them.
var blockedSubstrings = []string{"script", "javascript", "vbscript"}

// BlockedName reports whether an identifier or property name is denied by
// the sandbox. Matching is case-insensitive; names starting with a double
// underscore are always denied.
func BlockedName(name string) bool {
	lower := strings.ToLower(name)

	if strings.HasPrefix(lower, "__") {
		return true
	}

	if _, blocked := blockedIdentifiers[lower]; blocked {
		return true
	}

	for _, sub := range blockedSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}

	return false
}

// DangerousPattern returns the first dangerous substring found in text,
// case-insensitively, or "" if the text is clean.
func DangerousPattern(text string) string {
	lower := strings.ToLower(text)

	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return pattern
		}
	}

	return ""
}

// BannedControlCharacter returns the byte offset of the first banned control
// character (NUL, line separator, paragraph separator) in text, or -1.
func BannedControlCharacter(text string) int {
	for i, r := range text {
		switch r {
		case 0x00, ' ', ' ':
			return i
		}
	}
	return -1
}
