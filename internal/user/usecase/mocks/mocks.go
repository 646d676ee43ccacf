// Package mocks provides testify mocks for the user use case and its dependencies.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	outboxDomain "github.com/allisson/helpdesk/internal/outbox/domain"
	userDomain "github.com/allisson/helpdesk/internal/user/domain"
	userUseCase "github.com/allisson/helpdesk/internal/user/usecase"
)

// MockUseCase is a mock implementation of the user UseCase.
type MockUseCase struct {
	mock.Mock
}

func userResult(args mock.Arguments) (*userDomain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

// Register mocks the Register method.
func (m *MockUseCase) Register(
	ctx context.Context,
	input *userUseCase.RegisterUserInput,
) (*userDomain.User, error) {
	return userResult(m.Called(ctx, input))
}

// Authenticate mocks the Authenticate method.
func (m *MockUseCase) Authenticate(ctx context.Context, login, password string) (*userDomain.User, error) {
	return userResult(m.Called(ctx, login, password))
}

// GetByID mocks the GetByID method.
func (m *MockUseCase) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	return userResult(m.Called(ctx, id))
}

// List mocks the List method.
func (m *MockUseCase) List(ctx context.Context, offset, limit int) ([]*userDomain.User, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*userDomain.User), args.Error(1)
}

// Update mocks the Update method.
func (m *MockUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input *userUseCase.UpdateUserInput,
) (*userDomain.User, error) {
	return userResult(m.Called(ctx, id, input))
}

// Delete mocks the Delete method.
func (m *MockUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ChangePassword mocks the ChangePassword method.
func (m *MockUseCase) ChangePassword(
	ctx context.Context,
	id uuid.UUID,
	input *userUseCase.ChangePasswordInput,
) error {
	args := m.Called(ctx, id, input)
	return args.Error(0)
}

// CreateAdmin mocks the CreateAdmin method.
func (m *MockUseCase) CreateAdmin(
	ctx context.Context,
	input *userUseCase.CreateAdminInput,
) (*userDomain.User, error) {
	return userResult(m.Called(ctx, input))
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockUserRepository) Create(ctx context.Context, user *userDomain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// GetByID mocks the GetByID method.
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	return userResult(m.Called(ctx, id))
}

// GetByLogin mocks the GetByLogin method.
func (m *MockUserRepository) GetByLogin(ctx context.Context, login string) (*userDomain.User, error) {
	return userResult(m.Called(ctx, login))
}

// List mocks the List method.
func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]*userDomain.User, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*userDomain.User), args.Error(1)
}

// Update mocks the Update method.
func (m *MockUserRepository) Update(ctx context.Context, user *userDomain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// UpdatePassword mocks the UpdatePassword method.
func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	args := m.Called(ctx, id, hashedPassword)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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

// MockSessionRevoker is a mock implementation of SessionRevoker.
type MockSessionRevoker struct {
	mock.Mock
}

// RevokeAll mocks the RevokeAll method.
func (m *MockSessionRevoker) RevokeAll(ctx context.Context, principalID uuid.UUID) (int64, error) {
	args := m.Called(ctx, principalID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTxManager is a mock implementation of database.TxManager that runs fn inline.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}
