package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClaimsVersion is the only claim schema version this build issues and accepts.
const ClaimsVersion = 1

// TokenKind distinguishes the two token families. Each kind is signed with its own secret.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// AccessClaims is the decoded, validated content of an access token.
type AccessClaims struct {
	PrincipalID uuid.UUID
	SessionID   uuid.UUID
	Role        string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// RefreshClaims is the decoded, validated content of a refresh token.
// SessionID travels as the jti claim.
type RefreshClaims struct {
	PrincipalID uuid.UUID
	SessionID   uuid.UUID
	IssuedAt    time.Time
	ExpiresAt   time.Time
}
