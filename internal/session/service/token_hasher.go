package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// sha256TokenHasher implements TokenHasher with SHA-256. Refresh tokens carry
// enough entropy that a slow password hash is unnecessary.
type sha256TokenHasher struct{}

// NewTokenHasher creates a SHA-256 TokenHasher.
func NewTokenHasher() TokenHasher {
	return &sha256TokenHasher{}
}

// HashToken returns the hex SHA-256 digest of token.
func (h *sha256TokenHasher) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Matches hashes token and compares it with storedHash in constant time.
func (h *sha256TokenHasher) Matches(token, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(h.HashToken(token)), []byte(storedHash)) == 1
}
