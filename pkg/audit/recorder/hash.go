package recorder

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHashSize is the maximum number of bytes hashed from a source string.
// Expressions are length-limited well below this; the bound keeps hashing
// cheap even if a caller bypasses the engine ceilings.
const MaxHashSize = 1024 * 1024

// HashString computes the hex-encoded SHA-256 hash of a source string.
// Returns an empty string for empty input.
func HashString(content string) string {
	if len(content) == 0 {
		return ""
	}

	if len(content) > MaxHashSize {
		content = content[:MaxHashSize]
	}

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
