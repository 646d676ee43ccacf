// Package mocks provides testify mocks for the session use case and its dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	outboxDomain "github.com/allisson/helpdesk/internal/outbox/domain"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

// MockSessionUseCase is a mock implementation of SessionUseCase.
type MockSessionUseCase struct {
	mock.Mock
}

// Login mocks the Login method.
func (m *MockSessionUseCase) Login(
	ctx context.Context,
	input *sessionDomain.LoginInput,
) (*sessionDomain.TokenPair, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.TokenPair), args.Error(1)
}

// Refresh mocks the Refresh method.
func (m *MockSessionUseCase) Refresh(
	ctx context.Context,
	refreshToken string,
	clientMeta sessionDomain.ClientMeta,
) (*sessionDomain.TokenPair, error) {
	args := m.Called(ctx, refreshToken, clientMeta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.TokenPair), args.Error(1)
}

// Logout mocks the Logout method.
func (m *MockSessionUseCase) Logout(ctx context.Context, principalID, sessionID uuid.UUID) error {
	args := m.Called(ctx, principalID, sessionID)
	return args.Error(0)
}

// RevokeAll mocks the RevokeAll method.
func (m *MockSessionUseCase) RevokeAll(ctx context.Context, principalID uuid.UUID) (int64, error) {
	args := m.Called(ctx, principalID)
	return args.Get(0).(int64), args.Error(1)
}

// ListSessions mocks the ListSessions method.
func (m *MockSessionUseCase) ListSessions(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*sessionDomain.Session, error) {
	args := m.Called(ctx, principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sessionDomain.Session), args.Error(1)
}

// CleanupExpired mocks the CleanupExpired method.
func (m *MockSessionUseCase) CleanupExpired(ctx context.Context, dryRun bool) (int64, error) {
	args := m.Called(ctx, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockSessionRepository) Create(ctx context.Context, session *sessionDomain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockSessionRepository) Get(
	ctx context.Context,
	principalID, sessionID uuid.UUID,
) (*sessionDomain.Session, error) {
	args := m.Called(ctx, principalID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.Session), args.Error(1)
}

// ReplaceToken mocks the ReplaceToken method.
func (m *MockSessionRepository) ReplaceToken(
	ctx context.Context,
	principalID, sessionID uuid.UUID,
	currentHash, newHash string,
	newExpiresAt time.Time,
) error {
	args := m.Called(ctx, principalID, sessionID, currentHash, newHash, newExpiresAt)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockSessionRepository) Delete(ctx context.Context, principalID, sessionID uuid.UUID) error {
	args := m.Called(ctx, principalID, sessionID)
	return args.Error(0)
}

// DeleteAllByPrincipal mocks the DeleteAllByPrincipal method.
func (m *MockSessionRepository) DeleteAllByPrincipal(ctx context.Context, principalID uuid.UUID) (int64, error) {
	args := m.Called(ctx, principalID)
	return args.Get(0).(int64), args.Error(1)
}

// ListByPrincipal mocks the ListByPrincipal method.
func (m *MockSessionRepository) ListByPrincipal(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*sessionDomain.Session, error) {
	args := m.Called(ctx, principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sessionDomain.Session), args.Error(1)
}

// DeleteExpired mocks the DeleteExpired method.
func (m *MockSessionRepository) DeleteExpired(ctx context.Context, before time.Time, dryRun bool) (int64, error) {
	args := m.Called(ctx, before, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockPrincipalLookup is a mock implementation of PrincipalLookup.
type MockPrincipalLookup struct {
	mock.Mock
}

// FindPrincipalByID mocks the FindPrincipalByID method.
func (m *MockPrincipalLookup) FindPrincipalByID(
	ctx context.Context,
	id uuid.UUID,
) (*sessionDomain.Principal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.Principal), args.Error(1)
}

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository.
type MockOutboxEventRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
