package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashString computes the SHA256 hash of a string
func HashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
