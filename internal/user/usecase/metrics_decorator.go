package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/metrics"
	"github.com/allisson/helpdesk/internal/user/domain"
)

// userUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *userUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user", operation, status)
	u.metrics.RecordDuration(ctx, "user", operation, time.Since(start), status)
}

// Register records metrics for registrations.
func (u *userUseCaseWithMetrics) Register(ctx context.Context, input *RegisterUserInput) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.Register(ctx, input)
	u.record(ctx, "register", start, err)
	return user, err
}

// Authenticate records metrics for credential checks.
func (u *userUseCaseWithMetrics) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.Authenticate(ctx, login, password)
	u.record(ctx, "authenticate", start, err)
	return user, err
}

// GetByID records metrics for user lookups.
func (u *userUseCaseWithMetrics) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.GetByID(ctx, id)
	u.record(ctx, "get", start, err)
	return user, err
}

// List records metrics for user listings.
func (u *userUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	start := time.Now()
	users, err := u.next.List(ctx, offset, limit)
	u.record(ctx, "list", start, err)
	return users, err
}

// Update records metrics for admin updates.
func (u *userUseCaseWithMetrics) Update(
	ctx context.Context,
	id uuid.UUID,
	input *UpdateUserInput,
) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.Update(ctx, id, input)
	u.record(ctx, "update", start, err)
	return user, err
}

// Delete records metrics for deletions.
func (u *userUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := u.next.Delete(ctx, id)
	u.record(ctx, "delete", start, err)
	return err
}

// ChangePassword records metrics for password changes.
func (u *userUseCaseWithMetrics) ChangePassword(
	ctx context.Context,
	id uuid.UUID,
	input *ChangePasswordInput,
) error {
	start := time.Now()
	err := u.next.ChangePassword(ctx, id, input)
	u.record(ctx, "change_password", start, err)
	return err
}

// CreateAdmin records metrics for admin seeding.
func (u *userUseCaseWithMetrics) CreateAdmin(ctx context.Context, input *CreateAdminInput) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.CreateAdmin(ctx, input)
	u.record(ctx, "create_admin", start, err)
	return user, err
}
