package utils

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// CheapHash is used for secrets that are already high entropy
// (session secrets, handoff tokens), not for passwords.
func CheapHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash)
}

func CheapCompareHash(input string, hash string) bool {
	return strings.Trim(CheapHash(input), "=") == strings.Trim(hash, "=")
}
