// Package domain defines the refresh session model, token claims and the
// errors returned by the token lifecycle.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session binds the current refresh-token generation of one device to a principal.
// TokenHash is the SHA-256 hex digest of the refresh token; the raw token is never stored.
type Session struct {
	ID          uuid.UUID
	PrincipalID uuid.UUID
	TokenHash   string
	ClientMeta  ClientMeta
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time
}

// IsExpired reports whether the session is past its expiry at the given instant.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ClientMeta is captured at login and refresh for audit only. It never
// participates in authorization decisions.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// Principal is the slice of a user record the lifecycle needs on refresh.
type Principal struct {
	ID     uuid.UUID
	Role   string
	Active bool
}

// TokenPair is returned by Login and Refresh.
type TokenPair struct {
	SessionID             uuid.UUID
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// LoginInput carries an already authenticated principal into Login.
type LoginInput struct {
	PrincipalID uuid.UUID
	Role        string
	ClientMeta  ClientMeta
}

// RevocationPolicy decides how much is revoked when a found session is
// presented with a token that is not its current one.
type RevocationPolicy string

const (
	// RevokeSession removes only the session whose stale token was replayed.
	RevokeSession RevocationPolicy = "session"
	// RevokeAll removes every session of the principal.
	RevokeAll RevocationPolicy = "all"
)

// ParseRevocationPolicy converts a configuration value into a RevocationPolicy.
func ParseRevocationPolicy(value string) (RevocationPolicy, error) {
	switch RevocationPolicy(value) {
	case RevokeSession:
		return RevokeSession, nil
	case RevokeAll:
		return RevokeAll, nil
	default:
		return "", ErrInvalidRevocationPolicy
	}
}

// RevocationReason labels why sessions were removed, for logs, metrics and security events.
type RevocationReason string

const (
	ReasonLogout            RevocationReason = "logout"
	ReasonReuseDetected     RevocationReason = "reuse_detected"
	ReasonNotFound          RevocationReason = "not_found"
	ReasonExpired           RevocationReason = "expired"
	ReasonRevokeAll         RevocationReason = "revoke_all"
	ReasonPrincipalInactive RevocationReason = "principal_inactive"
)

// Security event types written to the outbox.
const (
	EventReuseDetected = "session.reuse_detected"
	EventRevokedAll    = "session.revoked_all"
)
