package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashEmail returns the lowercase hex SHA-256 digest of email.
// The input is hashed byte-for-byte, without trimming or case folding.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}

// HashEmailPtr hashes an optional email. Nil and empty inputs yield nil.
func HashEmailPtr(email *string) *string {
	if email == nil || *email == "" {
		return nil
	}
	h := HashEmail(*email)
	return &h
}

// IsEmailHash reports whether s has the shape of a HashEmail digest.
func IsEmailHash(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
