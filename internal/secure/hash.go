package secure

import (
	"crypto/sha256"
	"fmt"
)

// Hash returns the lowercase hex SHA-256 digest of text (64 characters).
// Unsalted: fine for fingerprinting, not for storing secrets.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum)
}
