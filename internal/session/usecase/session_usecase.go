package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/helpdesk/internal/errors"
	"github.com/allisson/helpdesk/internal/metrics"
	outboxDomain "github.com/allisson/helpdesk/internal/outbox/domain"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
	sessionService "github.com/allisson/helpdesk/internal/session/service"
)

// Config holds the lifecycle policy.
type Config struct {
	// RefreshTTL is the lifetime of a session from login, and from each refresh when sliding.
	RefreshTTL time.Duration
	// Policy decides the revocation scope when a found session sees a stale token.
	Policy sessionDomain.RevocationPolicy
	// SlidingExpiration extends ExpiresAt on every rotation.
	SlidingExpiration bool
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// sessionUseCase implements SessionUseCase.
type sessionUseCase struct {
	config      Config
	sessionRepo SessionRepository
	principals  PrincipalLookup
	outboxRepo  OutboxEventRepository
	codec       sessionService.TokenCodec
	hasher      sessionService.TokenHasher
	revocations metrics.SessionMetrics
	logger      *slog.Logger
}

// NewSessionUseCase creates a SessionUseCase. revocations and logger may be nil.
func NewSessionUseCase(
	config Config,
	sessionRepo SessionRepository,
	principals PrincipalLookup,
	outboxRepo OutboxEventRepository,
	codec sessionService.TokenCodec,
	hasher sessionService.TokenHasher,
	revocations metrics.SessionMetrics,
	logger *slog.Logger,
) SessionUseCase {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Policy == "" {
		config.Policy = sessionDomain.RevokeSession
	}
	if revocations == nil {
		revocations = metrics.NewNoOpSessionMetrics()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &sessionUseCase{
		config:      config,
		sessionRepo: sessionRepo,
		principals:  principals,
		outboxRepo:  outboxRepo,
		codec:       codec,
		hasher:      hasher,
		revocations: revocations,
		logger:      logger,
	}
}

// Login mints a session ID, signs both tokens and records the refresh token hash.
// Every call opens an independent session, one per device.
func (s *sessionUseCase) Login(
	ctx context.Context,
	input *sessionDomain.LoginInput,
) (*sessionDomain.TokenPair, error) {
	if input == nil || input.PrincipalID == uuid.Nil || input.Role == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "principal id and role are required")
	}

	now := s.now()
	sessionID := uuid.Must(uuid.NewV7())
	expiresAt := now.Add(s.config.RefreshTTL)

	refreshToken, err := s.codec.IssueRefreshToken(input.PrincipalID, sessionID, expiresAt)
	if err != nil {
		return nil, err
	}
	accessToken, accessExpiresAt, err := s.codec.IssueAccessToken(input.PrincipalID, sessionID, input.Role)
	if err != nil {
		return nil, err
	}

	session := &sessionDomain.Session{
		ID:          sessionID,
		PrincipalID: input.PrincipalID,
		TokenHash:   s.hasher.HashToken(refreshToken),
		ClientMeta:  input.ClientMeta,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   expiresAt,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, storageUnavailable(err)
	}

	s.logger.Info("session created",
		slog.String("principal_id", input.PrincipalID.String()),
		slog.String("session_id", sessionID.String()),
		slog.String("ip_address", input.ClientMeta.IPAddress),
	)

	return &sessionDomain.TokenPair{
		SessionID:             sessionID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
	}, nil
}

// Refresh rotates a refresh token.
//
// The checks run in a fixed order: signature and expiry of the token, ledger lookup,
// hash comparison, session expiry, principal state, then the compare-and-swap. An
// absent session revokes every session of the principal. A stale token on a found
// session, including the loser of a concurrent rotation, revokes per Config.Policy.
// Storage failures surface as ErrStorageUnavailable and never revoke anything.
func (s *sessionUseCase) Refresh(
	ctx context.Context,
	refreshToken string,
	clientMeta sessionDomain.ClientMeta,
) (*sessionDomain.TokenPair, error) {
	claims, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.Get(ctx, claims.PrincipalID, claims.SessionID)
	if err != nil {
		if !errors.Is(err, sessionDomain.ErrSessionNotFound) {
			return nil, storageUnavailable(err)
		}
		if err := s.revokeAll(
			ctx, claims.PrincipalID, claims.SessionID, sessionDomain.ReasonNotFound, clientMeta,
		); err != nil {
			return nil, err
		}
		return nil, sessionDomain.ErrSessionRevoked
	}

	if !s.hasher.Matches(refreshToken, session.TokenHash) {
		return nil, s.reuseDetected(ctx, session, clientMeta)
	}

	now := s.now()
	if session.IsExpired(now) {
		if err := s.sessionRepo.Delete(ctx, session.PrincipalID, session.ID); err != nil {
			return nil, storageUnavailable(err)
		}
		s.revocations.RecordRevocation(ctx, string(sessionDomain.ReasonExpired), 1)
		return nil, sessionDomain.ErrSessionExpired
	}

	principal, err := s.principals.FindPrincipalByID(ctx, session.PrincipalID)
	if err != nil && !errors.Is(err, sessionDomain.ErrPrincipalNotFound) {
		return nil, storageUnavailable(err)
	}
	if principal == nil || !principal.Active {
		if err := s.revokeAll(
			ctx, session.PrincipalID, session.ID, sessionDomain.ReasonPrincipalInactive, clientMeta,
		); err != nil {
			return nil, err
		}
		return nil, sessionDomain.ErrSessionRevoked
	}

	expiresAt := session.ExpiresAt
	if s.config.SlidingExpiration {
		expiresAt = now.Add(s.config.RefreshTTL)
	}

	newRefreshToken, err := s.codec.IssueRefreshToken(session.PrincipalID, session.ID, expiresAt)
	if err != nil {
		return nil, err
	}
	accessToken, accessExpiresAt, err := s.codec.IssueAccessToken(session.PrincipalID, session.ID, principal.Role)
	if err != nil {
		return nil, err
	}

	err = s.sessionRepo.ReplaceToken(
		ctx,
		session.PrincipalID,
		session.ID,
		session.TokenHash,
		s.hasher.HashToken(newRefreshToken),
		expiresAt,
	)
	if err != nil {
		if errors.Is(err, sessionDomain.ErrSessionConflict) {
			return nil, s.reuseDetected(ctx, session, clientMeta)
		}
		return nil, storageUnavailable(err)
	}

	s.logger.Debug("session rotated",
		slog.String("principal_id", session.PrincipalID.String()),
		slog.String("session_id", session.ID.String()),
		slog.String("ip_address", clientMeta.IPAddress),
	)

	return &sessionDomain.TokenPair{
		SessionID:             session.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresAt: expiresAt,
	}, nil
}

// Logout removes one session.
func (s *sessionUseCase) Logout(ctx context.Context, principalID, sessionID uuid.UUID) error {
	if err := s.sessionRepo.Delete(ctx, principalID, sessionID); err != nil {
		return storageUnavailable(err)
	}
	s.revocations.RecordRevocation(ctx, string(sessionDomain.ReasonLogout), 1)
	return nil
}

// RevokeAll removes every session of the principal. Used by logout-all and by
// credential changes in the user module.
func (s *sessionUseCase) RevokeAll(ctx context.Context, principalID uuid.UUID) (int64, error) {
	count, err := s.sessionRepo.DeleteAllByPrincipal(ctx, principalID)
	if err != nil {
		return 0, storageUnavailable(err)
	}
	s.revocations.RecordRevocation(ctx, string(sessionDomain.ReasonRevokeAll), count)

	s.logger.Warn("all sessions revoked",
		slog.String("principal_id", principalID.String()),
		slog.String("reason", string(sessionDomain.ReasonRevokeAll)),
		slog.Int64("count", count),
	)
	s.publish(ctx, sessionDomain.EventRevokedAll, map[string]any{
		"principal_id": principalID,
		"reason":       sessionDomain.ReasonRevokeAll,
		"count":        count,
	})

	return count, nil
}

// ListSessions returns the principal's sessions.
func (s *sessionUseCase) ListSessions(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*sessionDomain.Session, error) {
	sessions, err := s.sessionRepo.ListByPrincipal(ctx, principalID)
	if err != nil {
		return nil, storageUnavailable(err)
	}
	return sessions, nil
}

// CleanupExpired deletes sessions whose expiry has passed.
func (s *sessionUseCase) CleanupExpired(ctx context.Context, dryRun bool) (int64, error) {
	count, err := s.sessionRepo.DeleteExpired(ctx, s.now(), dryRun)
	if err != nil {
		return 0, storageUnavailable(err)
	}
	if !dryRun {
		s.revocations.RecordRevocation(ctx, string(sessionDomain.ReasonExpired), count)
	}
	return count, nil
}

// reuseDetected applies the revocation policy to a session that was presented
// with a token other than its current one and returns ErrTokenReuseDetected.
func (s *sessionUseCase) reuseDetected(
	ctx context.Context,
	session *sessionDomain.Session,
	clientMeta sessionDomain.ClientMeta,
) error {
	var count int64 = 1
	if s.config.Policy == sessionDomain.RevokeAll {
		n, err := s.sessionRepo.DeleteAllByPrincipal(ctx, session.PrincipalID)
		if err != nil {
			return storageUnavailable(err)
		}
		count = n
	} else if err := s.sessionRepo.Delete(ctx, session.PrincipalID, session.ID); err != nil {
		return storageUnavailable(err)
	}
	s.revocations.RecordRevocation(ctx, string(sessionDomain.ReasonReuseDetected), count)

	s.logger.Warn("refresh token reuse detected",
		slog.String("principal_id", session.PrincipalID.String()),
		slog.String("session_id", session.ID.String()),
		slog.String("policy", string(s.config.Policy)),
		slog.Int64("revoked", count),
		slog.String("ip_address", clientMeta.IPAddress),
		slog.String("user_agent", clientMeta.UserAgent),
	)
	s.publish(ctx, sessionDomain.EventReuseDetected, map[string]any{
		"principal_id": session.PrincipalID,
		"session_id":   session.ID,
		"policy":       s.config.Policy,
		"revoked":      count,
		"ip_address":   clientMeta.IPAddress,
		"user_agent":   clientMeta.UserAgent,
	})

	return sessionDomain.ErrTokenReuseDetected
}

// revokeAll removes every session of a principal after an anomaly on sessionID.
func (s *sessionUseCase) revokeAll(
	ctx context.Context,
	principalID, sessionID uuid.UUID,
	reason sessionDomain.RevocationReason,
	clientMeta sessionDomain.ClientMeta,
) error {
	count, err := s.sessionRepo.DeleteAllByPrincipal(ctx, principalID)
	if err != nil {
		return storageUnavailable(err)
	}
	s.revocations.RecordRevocation(ctx, string(reason), count)

	s.logger.Warn("all sessions revoked",
		slog.String("principal_id", principalID.String()),
		slog.String("session_id", sessionID.String()),
		slog.String("reason", string(reason)),
		slog.Int64("count", count),
		slog.String("ip_address", clientMeta.IPAddress),
		slog.String("user_agent", clientMeta.UserAgent),
	)
	s.publish(ctx, sessionDomain.EventRevokedAll, map[string]any{
		"principal_id": principalID,
		"session_id":   sessionID,
		"reason":       reason,
		"count":        count,
		"ip_address":   clientMeta.IPAddress,
		"user_agent":   clientMeta.UserAgent,
	})
	return nil
}

// publish writes a security event to the outbox. Failures are logged only; they
// never change the outcome of the lifecycle operation.
func (s *sessionUseCase) publish(ctx context.Context, eventType string, payload map[string]any) {
	if s.outboxRepo == nil {
		return
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal security event", slog.String("event_type", eventType), slog.Any("error", err))
		return
	}

	event := &outboxDomain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(payloadJSON),
		Status:    outboxDomain.OutboxEventStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.logger.Error("failed to write security event", slog.String("event_type", eventType), slog.Any("error", err))
	}
}

func (s *sessionUseCase) now() time.Time {
	return s.config.Now().UTC().Truncate(time.Second)
}

// storageUnavailable tags a ledger failure so callers answer 503 rather than 401.
func storageUnavailable(err error) error {
	if errors.Is(err, sessionDomain.ErrStorageUnavailable) {
		return err
	}
	return apperrors.Join(sessionDomain.ErrStorageUnavailable, err)
}
