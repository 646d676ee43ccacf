// Package usecase implements the refresh-token lifecycle: login, rotation with
// reuse detection, logout and mass revocation.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	outboxDomain "github.com/allisson/helpdesk/internal/outbox/domain"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

// SessionRepository is the session ledger. Every operation is scoped to one
// principal and must be linearizable with the others on that principal.
type SessionRepository interface {
	// Create stores a new session. The caller mints the session ID.
	Create(ctx context.Context, session *sessionDomain.Session) error

	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, principalID, sessionID uuid.UUID) (*sessionDomain.Session, error)

	// ReplaceToken swaps the token hash and expiry only if the stored hash still
	// equals currentHash. It returns ErrSessionConflict when the swap did not happen.
	ReplaceToken(
		ctx context.Context,
		principalID, sessionID uuid.UUID,
		currentHash, newHash string,
		newExpiresAt time.Time,
	) error

	// Delete removes one session. Deleting an absent session is not an error.
	Delete(ctx context.Context, principalID, sessionID uuid.UUID) error

	// DeleteAllByPrincipal removes every session of the principal and returns how many were removed.
	DeleteAllByPrincipal(ctx context.Context, principalID uuid.UUID) (int64, error)

	// ListByPrincipal returns the principal's sessions, newest first.
	ListByPrincipal(ctx context.Context, principalID uuid.UUID) ([]*sessionDomain.Session, error)

	// DeleteExpired removes sessions that expired before the given time. With dryRun
	// it only counts them.
	DeleteExpired(ctx context.Context, before time.Time, dryRun bool) (int64, error)
}

// PrincipalLookup resolves the current state of a principal on refresh.
type PrincipalLookup interface {
	// FindPrincipalByID returns the principal or ErrPrincipalNotFound.
	FindPrincipalByID(ctx context.Context, id uuid.UUID) (*sessionDomain.Principal, error)
}

// OutboxEventRepository receives security events.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// SessionUseCase is the token lifecycle exposed to route handlers and the CLI.
type SessionUseCase interface {
	// Login opens a new session for an already authenticated principal.
	Login(ctx context.Context, input *sessionDomain.LoginInput) (*sessionDomain.TokenPair, error)

	// Refresh rotates a refresh token. Failures are ErrInvalidToken, ErrSessionRevoked,
	// ErrTokenReuseDetected, ErrSessionExpired or ErrStorageUnavailable.
	Refresh(
		ctx context.Context,
		refreshToken string,
		clientMeta sessionDomain.ClientMeta,
	) (*sessionDomain.TokenPair, error)

	// Logout removes one session. It is idempotent.
	Logout(ctx context.Context, principalID, sessionID uuid.UUID) error

	// RevokeAll removes every session of the principal and returns how many were removed.
	RevokeAll(ctx context.Context, principalID uuid.UUID) (int64, error)

	// ListSessions returns the principal's live and not yet swept sessions.
	ListSessions(ctx context.Context, principalID uuid.UUID) ([]*sessionDomain.Session, error)

	// CleanupExpired deletes sessions past their expiry. With dryRun it only counts them.
	CleanupExpired(ctx context.Context, dryRun bool) (int64, error)
}
