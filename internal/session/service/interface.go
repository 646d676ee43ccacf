// Package service provides the stateless token primitives of the session
// lifecycle: JWT signing/verification and refresh-token hashing.
package service

import (
	"time"

	"github.com/google/uuid"

	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

// TokenCodec signs and verifies access and refresh tokens. It never consults
// the session ledger; verification is signature, expiry and claim-schema only.
type TokenCodec interface {
	// IssueAccessToken signs {sub, sid, role, iat, exp} with the access secret and
	// returns the token with its expiry.
	IssueAccessToken(principalID, sessionID uuid.UUID, role string) (string, time.Time, error)

	// IssueRefreshToken signs {sub, jti, nonce, iat, exp} with the refresh secret.
	// expiresAt is supplied by the caller so the token and its ledger row expire together.
	IssueRefreshToken(principalID, sessionID uuid.UUID, expiresAt time.Time) (string, error)

	// VerifyAccessToken returns the claims of a valid access token or ErrInvalidToken.
	VerifyAccessToken(token string) (*sessionDomain.AccessClaims, error)

	// VerifyRefreshToken returns the claims of a valid refresh token or ErrInvalidToken.
	VerifyRefreshToken(token string) (*sessionDomain.RefreshClaims, error)
}

// TokenHasher produces the one-way digest stored in the ledger.
type TokenHasher interface {
	// HashToken returns the hex SHA-256 digest of token.
	HashToken(token string) string

	// Matches compares token against a stored digest in constant time.
	Matches(token, storedHash string) bool
}
