package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/metrics"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

// sessionUseCaseWithMetrics decorates SessionUseCase with metrics instrumentation.
type sessionUseCaseWithMetrics struct {
	next    SessionUseCase
	metrics metrics.BusinessMetrics
}

// NewSessionUseCaseWithMetrics wraps a SessionUseCase with metrics recording.
func NewSessionUseCaseWithMetrics(useCase SessionUseCase, m metrics.BusinessMetrics) SessionUseCase {
	return &sessionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *sessionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "session", operation, status)
	s.metrics.RecordDuration(ctx, "session", operation, time.Since(start), status)
}

// Login records metrics for login operations.
func (s *sessionUseCaseWithMetrics) Login(
	ctx context.Context,
	input *sessionDomain.LoginInput,
) (*sessionDomain.TokenPair, error) {
	start := time.Now()
	pair, err := s.next.Login(ctx, input)
	s.record(ctx, "login", start, err)
	return pair, err
}

// Refresh records metrics for refresh operations.
func (s *sessionUseCaseWithMetrics) Refresh(
	ctx context.Context,
	refreshToken string,
	clientMeta sessionDomain.ClientMeta,
) (*sessionDomain.TokenPair, error) {
	start := time.Now()
	pair, err := s.next.Refresh(ctx, refreshToken, clientMeta)
	s.record(ctx, "refresh", start, err)
	return pair, err
}

// Logout records metrics for logout operations.
func (s *sessionUseCaseWithMetrics) Logout(ctx context.Context, principalID, sessionID uuid.UUID) error {
	start := time.Now()
	err := s.next.Logout(ctx, principalID, sessionID)
	s.record(ctx, "logout", start, err)
	return err
}

// RevokeAll records metrics for revoke-all operations.
func (s *sessionUseCaseWithMetrics) RevokeAll(ctx context.Context, principalID uuid.UUID) (int64, error) {
	start := time.Now()
	count, err := s.next.RevokeAll(ctx, principalID)
	s.record(ctx, "revoke_all", start, err)
	return count, err
}

// ListSessions records metrics for session list operations.
func (s *sessionUseCaseWithMetrics) ListSessions(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*sessionDomain.Session, error) {
	start := time.Now()
	sessions, err := s.next.ListSessions(ctx, principalID)
	s.record(ctx, "list", start, err)
	return sessions, err
}

// CleanupExpired records metrics for expired session cleanup.
func (s *sessionUseCaseWithMetrics) CleanupExpired(ctx context.Context, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := s.next.CleanupExpired(ctx, dryRun)
	s.record(ctx, "cleanup_expired", start, err)
	return count, err
}
