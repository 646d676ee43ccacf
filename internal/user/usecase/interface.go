// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	outboxDomain "github.com/allisson/helpdesk/internal/outbox/domain"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
	"github.com/allisson/helpdesk/internal/user/domain"
)

// RegisterUserInput contains the input data for self-registration.
type RegisterUserInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// CreateAdminInput contains the input data for seeding an administrator.
type CreateAdminInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// UpdateUserInput carries an administrator's change to a user. Nil fields are left as is.
type UpdateUserInput struct {
	Role   *domain.Role
	Status *domain.Status
}

// ChangePasswordInput carries a user's own password change.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	Register(ctx context.Context, input *RegisterUserInput) (*domain.User, error)
	Authenticate(ctx context.Context, login, password string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, input *UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ChangePassword(ctx context.Context, id uuid.UUID, input *ChangePasswordInput) error
	CreateAdmin(ctx context.Context, input *CreateAdminInput) (*domain.User, error)
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetByLogin finds a user whose username or email equals login.
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	// Update persists the name, role and status of the user.
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OutboxEventRepository interface defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// SessionRevoker ends every session of a user. Implemented by the session use case.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, principalID uuid.UUID) (int64, error)
}

// PrincipalFinder is the view of users the token lifecycle consults on refresh.
type PrincipalFinder interface {
	FindPrincipalByID(ctx context.Context, id uuid.UUID) (*sessionDomain.Principal, error)
}
