// Package service provides password hashing for user credentials.
package service

import (
	"strings"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/allisson/helpdesk/internal/errors"
)

// legacyPrefixes identify bcrypt hashes imported from the previous user store.
var legacyPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	// Hash returns an Argon2id PHC string for password.
	Hash(password string) (string, error)

	// Compare checks password against a stored hash. needsRehash is true when the
	// password matched a legacy bcrypt hash that should be replaced with Hash.
	Compare(password, hashedPassword string) (ok bool, needsRehash bool)
}

// passwordService implements PasswordService using Argon2id with bcrypt read support.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// Hash hashes a plain text password using Argon2id.
func (s *passwordService) Hash(password string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashed, nil
}

// Compare performs a constant-time comparison between a plain password and its hash.
func (s *passwordService) Compare(password, hashedPassword string) (bool, bool) {
	if isLegacyHash(hashedPassword) {
		if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
			return false, false
		}
		return true, true
	}

	ok, err := s.hasher.Verify([]byte(password), hashedPassword)
	if err != nil {
		return false, false
	}
	return ok, false
}

func isLegacyHash(hashedPassword string) bool {
	for _, prefix := range legacyPrefixes {
		if strings.HasPrefix(hashedPassword, prefix) {
			return true
		}
	}
	return false
}

// NewPasswordService creates a PasswordService using the Interactive Argon2id policy.
func NewPasswordService() (PasswordService, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}
	return &passwordService{hasher: hasher}, nil
}
