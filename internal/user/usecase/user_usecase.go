package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/database"
	apperrors "github.com/allisson/helpdesk/internal/errors"
	outboxDomain "github.com/allisson/helpdesk/internal/outbox/domain"
	"github.com/allisson/helpdesk/internal/user/domain"
	"github.com/allisson/helpdesk/internal/user/service"
	appValidation "github.com/allisson/helpdesk/internal/validation"
)

var passwordRules = []validation.Rule{
	validation.Required.Error("password is required"),
	validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
	appValidation.PasswordStrength{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	},
}

// UserUseCase handles user-related business logic
type UserUseCase struct {
	txManager  database.TxManager
	userRepo   UserRepository
	outboxRepo OutboxEventRepository
	passwords  service.PasswordService
	sessions   SessionRevoker
	logger     *slog.Logger

	// decoyHash is verified against when a login is unknown, so misses cost as much as wrong passwords.
	decoyOnce sync.Once
	decoyHash string
}

// decoyPassword is hashed once to build decoyHash. It never matches a stored account.
const decoyPassword = "helpdesk-unknown-login-decoy"

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	outboxRepo OutboxEventRepository,
	passwords service.PasswordService,
	sessions SessionRevoker,
	logger *slog.Logger,
) UseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &UserUseCase{
		txManager:  txManager,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		passwords:  passwords,
		sessions:   sessions,
		logger:     logger,
	}
}

func validateIdentity(name, username, email *string) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(username,
			validation.Required.Error("username is required"),
			appValidation.Username,
		),
		validation.Field(email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
	}
}

// validateRegisterUserInput validates the registration input using jellydator/validation
func (uc *UserUseCase) validateRegisterUserInput(input *RegisterUserInput) error {
	fields := validateIdentity(&input.Name, &input.Username, &input.Email)
	fields = append(fields, validation.Field(&input.Password, passwordRules...))
	return appValidation.WrapValidationError(validation.ValidateStruct(input, fields...))
}

// Register creates a customer or engineer account and writes a user.registered event.
// Customers start approved; engineers wait for an administrator.
func (uc *UserUseCase) Register(ctx context.Context, input *RegisterUserInput) (*domain.User, error) {
	if input.Role == "" {
		input.Role = domain.RoleCustomer
	}
	if input.Role == domain.RoleAdmin {
		return nil, domain.ErrAdminRegistration
	}
	if !input.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	if err := uc.validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	return uc.create(ctx, input.Name, input.Username, input.Email, input.Password, input.Role,
		domain.InitialStatus(input.Role))
}

// CreateAdmin seeds an approved administrator. It is reachable from the CLI only.
func (uc *UserUseCase) CreateAdmin(ctx context.Context, input *CreateAdminInput) (*domain.User, error) {
	fields := validateIdentity(&input.Name, &input.Username, &input.Email)
	fields = append(fields, validation.Field(&input.Password, passwordRules...))
	if err := appValidation.WrapValidationError(validation.ValidateStruct(input, fields...)); err != nil {
		return nil, err
	}

	return uc.create(ctx, input.Name, input.Username, input.Email, input.Password, domain.RoleAdmin,
		domain.StatusApproved)
}

func (uc *UserUseCase) create(
	ctx context.Context,
	name, username, email, password string,
	role domain.Role,
	status domain.Status,
) (*domain.User, error) {
	hashedPassword, err := uc.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Name:     strings.TrimSpace(name),
		Username: normalizeLogin(username),
		Email:    normalizeLogin(email),
		Password: hashedPassword,
		Role:     role,
		Status:   status,
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return uc.publish(ctx, domain.EventUserRegistered, map[string]any{
			"user_id":  user.ID,
			"username": user.Username,
			"role":     user.Role,
			"status":   user.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate checks a login (username or email) and password. An unknown login and a
// wrong password both return ErrInvalidCredentials. A legacy bcrypt hash that matches is
// upgraded to Argon2id.
func (uc *UserUseCase) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.userRepo.GetByLogin(ctx, normalizeLogin(login))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.passwords.Compare(password, uc.decoy())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, needsRehash := uc.passwords.Compare(password, user.Password)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsApproved() {
		return nil, domain.ErrUserNotApproved
	}

	if needsRehash {
		uc.upgradePassword(ctx, user, password)
	}

	return user, nil
}

func (uc *UserUseCase) decoy() string {
	uc.decoyOnce.Do(func() {
		hashed, err := uc.passwords.Hash(decoyPassword)
		if err != nil {
			uc.logger.Error("failed to build decoy password hash", slog.Any("error", err))
			return
		}
		uc.decoyHash = hashed
	})
	return uc.decoyHash
}

func (uc *UserUseCase) upgradePassword(ctx context.Context, user *domain.User, password string) {
	hashedPassword, err := uc.passwords.Hash(password)
	if err == nil {
		err = uc.userRepo.UpdatePassword(ctx, user.ID, hashedPassword)
	}
	if err != nil {
		uc.logger.Error("failed to upgrade legacy password hash",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err),
		)
		return
	}
	user.Password = hashedPassword
}

// GetByID retrieves a user by ID
func (uc *UserUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// List retrieves users ordered by creation time, newest first.
func (uc *UserUseCase) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	return uc.userRepo.List(ctx, offset, limit)
}

// Update changes the role or status of a user. Any effective change ends every
// session of the user so the next refresh cannot carry the old role.
func (uc *UserUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input *UpdateUserInput,
) (*domain.User, error) {
	if input.Role != nil && !input.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if input.Role != nil && *input.Role != user.Role {
		user.Role = *input.Role
		changed = true
	}
	if input.Status != nil && *input.Status != user.Status {
		user.Status = *input.Status
		changed = true
	}
	if !changed {
		return user, nil
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.revokeSessions(ctx, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user and every session it holds.
func (uc *UserUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	if err := uc.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	return uc.revokeSessions(ctx, id)
}

// ChangePassword verifies the current password, stores the new one and ends every session.
func (uc *UserUseCase) ChangePassword(ctx context.Context, id uuid.UUID, input *ChangePasswordInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.CurrentPassword, validation.Required.Error("current password is required")),
		validation.Field(&input.NewPassword, passwordRules...),
	)
	if err := appValidation.WrapValidationError(err); err != nil {
		return err
	}

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ok, _ := uc.passwords.Compare(input.CurrentPassword, user.Password); !ok {
		return domain.ErrWrongCurrentPassword
	}

	hashedPassword, err := uc.passwords.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
			return err
		}
		return uc.publish(ctx, domain.EventPasswordChanged, map[string]any{
			"user_id": user.ID,
		})
	})
	if err != nil {
		return err
	}

	return uc.revokeSessions(ctx, user.ID)
}

func (uc *UserUseCase) revokeSessions(ctx context.Context, id uuid.UUID) error {
	if _, err := uc.sessions.RevokeAll(ctx, id); err != nil {
		return apperrors.Wrap(err, "failed to revoke user sessions")
	}
	return nil
}

func (uc *UserUseCase) publish(ctx context.Context, eventType string, payload map[string]any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event payload")
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(payloadJSON),
		Status:    outboxDomain.OutboxEventStatusPending,
		Retries:   0,
	}
	if err := uc.outboxRepo.Create(ctx, outboxEvent); err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}

func normalizeLogin(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
