package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/helpdesk/internal/errors"
	outboxDomain "github.com/allisson/helpdesk/internal/outbox/domain"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
	"github.com/allisson/helpdesk/internal/user/domain"
	"github.com/allisson/helpdesk/internal/user/usecase"
	"github.com/allisson/helpdesk/internal/user/usecase/mocks"
)

// fakePasswords hashes by prefixing. Hashes starting with "legacy:" match and ask for a rehash.
type fakePasswords struct{}

func (fakePasswords) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakePasswords) Compare(password, hashedPassword string) (bool, bool) {
	if rest, ok := strings.CutPrefix(hashedPassword, "legacy:"); ok {
		return rest == password, rest == password
	}
	return hashedPassword == "hashed:"+password, false
}

// recordingPasswords counts calls and remembers the hashes compared against.
type recordingPasswords struct {
	fakePasswords
	hashes   int
	compared []string
}

func (p *recordingPasswords) Hash(password string) (string, error) {
	p.hashes++
	return p.fakePasswords.Hash(password)
}

func (p *recordingPasswords) Compare(password, hashedPassword string) (bool, bool) {
	p.compared = append(p.compared, hashedPassword)
	return p.fakePasswords.Compare(password, hashedPassword)
}

type userFixture struct {
	useCase  usecase.UseCase
	tx       *mocks.MockTxManager
	users    *mocks.MockUserRepository
	outbox   *mocks.MockOutboxEventRepository
	sessions *mocks.MockSessionRevoker
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	f := &userFixture{
		tx:       &mocks.MockTxManager{},
		users:    &mocks.MockUserRepository{},
		outbox:   &mocks.MockOutboxEventRepository{},
		sessions: &mocks.MockSessionRevoker{},
	}
	f.useCase = usecase.NewUserUseCase(f.tx, f.users, f.outbox, fakePasswords{}, f.sessions, nil)

	t.Cleanup(func() {
		f.tx.AssertExpectations(t)
		f.users.AssertExpectations(t)
		f.outbox.AssertExpectations(t)
		f.sessions.AssertExpectations(t)
	})
	return f
}

func approvedUser(role domain.Role) *domain.User {
	return &domain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Name:     "Jane Doe",
		Username: "jane",
		Email:    "jane@example.com",
		Password: "hashed:SecurePass123!",
		Role:     role,
		Status:   domain.StatusApproved,
	}
}

func TestUserUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CustomerIsApproved", func(t *testing.T) {
		f := newUserFixture(t)

		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "jane" && u.Email == "jane@example.com" &&
				u.Password == "hashed:SecurePass123!" &&
				u.Role == domain.RoleCustomer && u.Status == domain.StatusApproved
		})).Return(nil)
		f.outbox.On("Create", ctx, mock.MatchedBy(func(e *outboxDomain.OutboxEvent) bool {
			var payload map[string]any
			_ = json.Unmarshal([]byte(e.Payload), &payload)
			return e.EventType == domain.EventUserRegistered &&
				e.Status == outboxDomain.OutboxEventStatusPending &&
				payload["username"] == "jane" && payload["password"] == nil
		})).Return(nil)

		user, err := f.useCase.Register(ctx, &usecase.RegisterUserInput{
			Name:     " Jane Doe ",
			Username: "Jane",
			Email:    "JANE@example.com",
			Password: "SecurePass123!",
		})

		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", user.Name)
		assert.NotEqual(t, uuid.Nil, user.ID)
	})

	t.Run("Success_EngineerIsPending", func(t *testing.T) {
		f := newUserFixture(t)

		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleEngineer && u.Status == domain.StatusPending
		})).Return(nil)
		f.outbox.On("Create", ctx, mock.Anything).Return(nil)

		user, err := f.useCase.Register(ctx, &usecase.RegisterUserInput{
			Name:     "Eng",
			Username: "eng",
			Email:    "eng@example.com",
			Password: "SecurePass123!",
			Role:     domain.RoleEngineer,
		})

		require.NoError(t, err)
		assert.False(t, user.IsApproved())
	})

	t.Run("Error_AdminCannotSelfRegister", func(t *testing.T) {
		f := newUserFixture(t)

		_, err := f.useCase.Register(ctx, &usecase.RegisterUserInput{
			Name:     "Root",
			Username: "root",
			Email:    "root@example.com",
			Password: "SecurePass123!",
			Role:     domain.RoleAdmin,
		})

		assert.ErrorIs(t, err, domain.ErrAdminRegistration)
	})

	t.Run("Error_UnknownRole", func(t *testing.T) {
		f := newUserFixture(t)

		_, err := f.useCase.Register(ctx, &usecase.RegisterUserInput{Role: "OWNER"})

		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})

	t.Run("Error_WeakPassword", func(t *testing.T) {
		f := newUserFixture(t)

		_, err := f.useCase.Register(ctx, &usecase.RegisterUserInput{
			Name:     "Jane",
			Username: "jane",
			Email:    "jane@example.com",
			Password: "password",
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		f := newUserFixture(t)

		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.users.On("Create", ctx, mock.Anything).Return(domain.ErrUserAlreadyExists)

		_, err := f.useCase.Register(ctx, &usecase.RegisterUserInput{
			Name:     "Jane",
			Username: "jane",
			Email:    "jane@example.com",
			Password: "SecurePass123!",
		})

		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})
}

func TestUserUseCase_CreateAdmin(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
	f.users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleAdmin && u.Status == domain.StatusApproved
	})).Return(nil)
	f.outbox.On("Create", ctx, mock.Anything).Return(nil)

	user, err := f.useCase.CreateAdmin(ctx, &usecase.CreateAdminInput{
		Name:     "Admin",
		Username: "admin",
		Email:    "admin@example.com",
		Password: "SecurePass123!",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestUserUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ByUsernameOrEmail", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleCustomer)

		f.users.On("GetByLogin", ctx, "jane").Return(user, nil).Once()
		f.users.On("GetByLogin", ctx, "jane@example.com").Return(user, nil).Once()

		got, err := f.useCase.Authenticate(ctx, " Jane ", "SecurePass123!")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		got, err = f.useCase.Authenticate(ctx, "JANE@example.com", "SecurePass123!")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("Error_UnknownLoginAndWrongPasswordLookAlike", func(t *testing.T) {
		f := newUserFixture(t)

		f.users.On("GetByLogin", ctx, "ghost").Return(nil, domain.ErrUserNotFound)
		f.users.On("GetByLogin", ctx, "jane").Return(approvedUser(domain.RoleCustomer), nil)

		_, unknownErr := f.useCase.Authenticate(ctx, "ghost", "SecurePass123!")
		_, wrongErr := f.useCase.Authenticate(ctx, "jane", "WrongPass123!")

		assert.ErrorIs(t, unknownErr, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, wrongErr, domain.ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})

	t.Run("UnknownLoginStillVerifiesAHash", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		passwords := &recordingPasswords{}
		uc := usecase.NewUserUseCase(&mocks.MockTxManager{}, users, &mocks.MockOutboxEventRepository{},
			passwords, &mocks.MockSessionRevoker{}, nil)

		users.On("GetByLogin", ctx, "ghost").Return(nil, domain.ErrUserNotFound).Twice()

		for range 2 {
			_, err := uc.Authenticate(ctx, "ghost", "SecurePass123!")
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		}

		require.Len(t, passwords.compared, 2)
		assert.True(t, strings.HasPrefix(passwords.compared[0], "hashed:"))
		assert.Equal(t, passwords.compared[0], passwords.compared[1])
		assert.Equal(t, 1, passwords.hashes)
		users.AssertExpectations(t)
	})

	t.Run("Error_PendingEngineer", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleEngineer)
		user.Status = domain.StatusPending

		f.users.On("GetByLogin", ctx, "jane").Return(user, nil)

		_, err := f.useCase.Authenticate(ctx, "jane", "SecurePass123!")

		assert.ErrorIs(t, err, domain.ErrUserNotApproved)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Error_EmptyCredentials", func(t *testing.T) {
		f := newUserFixture(t)

		_, err := f.useCase.Authenticate(ctx, "  ", "")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Error_StoreFailureIsNotACredentialError", func(t *testing.T) {
		f := newUserFixture(t)
		dbErr := errors.New("connection refused")

		f.users.On("GetByLogin", ctx, "jane").Return(nil, dbErr)

		_, err := f.useCase.Authenticate(ctx, "jane", "SecurePass123!")

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Success_LegacyHashIsUpgraded", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleCustomer)
		user.Password = "legacy:OldPass123!"

		f.users.On("GetByLogin", ctx, "jane").Return(user, nil)
		f.users.On("UpdatePassword", ctx, user.ID, "hashed:OldPass123!").Return(nil)

		got, err := f.useCase.Authenticate(ctx, "jane", "OldPass123!")

		require.NoError(t, err)
		assert.Equal(t, "hashed:OldPass123!", got.Password)
	})

	t.Run("Success_UpgradeFailureDoesNotBlockLogin", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleCustomer)
		user.Password = "legacy:OldPass123!"

		f.users.On("GetByLogin", ctx, "jane").Return(user, nil)
		f.users.On("UpdatePassword", ctx, user.ID, mock.Anything).Return(errors.New("read only"))

		_, err := f.useCase.Authenticate(ctx, "jane", "OldPass123!")

		assert.NoError(t, err)
	})
}

func TestUserUseCase_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RoleChangeRevokesSessions", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleCustomer)
		role := domain.RoleEngineer

		f.users.On("GetByID", ctx, user.ID).Return(user, nil)
		f.users.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleEngineer
		})).Return(nil)
		f.sessions.On("RevokeAll", ctx, user.ID).Return(int64(2), nil)

		updated, err := f.useCase.Update(ctx, user.ID, &usecase.UpdateUserInput{Role: &role})

		require.NoError(t, err)
		assert.Equal(t, domain.RoleEngineer, updated.Role)
	})

	t.Run("Success_ApprovalRevokesSessions", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleEngineer)
		user.Status = domain.StatusPending
		status := domain.StatusApproved

		f.users.On("GetByID", ctx, user.ID).Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)
		f.sessions.On("RevokeAll", ctx, user.ID).Return(int64(0), nil)

		updated, err := f.useCase.Update(ctx, user.ID, &usecase.UpdateUserInput{Status: &status})

		require.NoError(t, err)
		assert.True(t, updated.IsApproved())
	})

	t.Run("Success_NoChangeKeepsSessions", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleCustomer)
		role := domain.RoleCustomer

		f.users.On("GetByID", ctx, user.ID).Return(user, nil)

		_, err := f.useCase.Update(ctx, user.ID, &usecase.UpdateUserInput{Role: &role})

		assert.NoError(t, err)
	})

	t.Run("Error_InvalidStatus", func(t *testing.T) {
		f := newUserFixture(t)
		status := domain.Status("BANNED")

		_, err := f.useCase.Update(ctx, uuid.Must(uuid.NewV7()), &usecase.UpdateUserInput{Status: &status})

		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("Error_RevocationFailureIsReported", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleCustomer)
		status := domain.StatusRejected

		f.users.On("GetByID", ctx, user.ID).Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)
		f.sessions.On("RevokeAll", ctx, user.ID).Return(int64(0), sessionDomain.ErrStorageUnavailable)

		_, err := f.useCase.Update(ctx, user.ID, &usecase.UpdateUserInput{Status: &status})

		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})
}

func TestUserUseCase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newUserFixture(t)
		id := uuid.Must(uuid.NewV7())

		f.users.On("Delete", ctx, id).Return(nil)
		f.sessions.On("RevokeAll", ctx, id).Return(int64(3), nil)

		assert.NoError(t, f.useCase.Delete(ctx, id))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		f := newUserFixture(t)
		id := uuid.Must(uuid.NewV7())

		f.users.On("Delete", ctx, id).Return(domain.ErrUserNotFound)

		assert.ErrorIs(t, f.useCase.Delete(ctx, id), domain.ErrUserNotFound)
	})
}

func TestUserUseCase_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RevokesAllSessions", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleCustomer)

		f.users.On("GetByID", ctx, user.ID).Return(user, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.users.On("UpdatePassword", ctx, user.ID, "hashed:NewSecure456?").Return(nil)
		f.outbox.On("Create", ctx, mock.MatchedBy(func(e *outboxDomain.OutboxEvent) bool {
			return e.EventType == domain.EventPasswordChanged
		})).Return(nil)
		f.sessions.On("RevokeAll", ctx, user.ID).Return(int64(4), nil)

		err := f.useCase.ChangePassword(ctx, user.ID, &usecase.ChangePasswordInput{
			CurrentPassword: "SecurePass123!",
			NewPassword:     "NewSecure456?",
		})

		assert.NoError(t, err)
	})

	t.Run("Error_WrongCurrentPassword", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleCustomer)

		f.users.On("GetByID", ctx, user.ID).Return(user, nil)

		err := f.useCase.ChangePassword(ctx, user.ID, &usecase.ChangePasswordInput{
			CurrentPassword: "Nope123!",
			NewPassword:     "NewSecure456?",
		})

		assert.ErrorIs(t, err, domain.ErrWrongCurrentPassword)
	})

	t.Run("Error_WeakNewPassword", func(t *testing.T) {
		f := newUserFixture(t)

		err := f.useCase.ChangePassword(ctx, uuid.Must(uuid.NewV7()), &usecase.ChangePasswordInput{
			CurrentPassword: "SecurePass123!",
			NewPassword:     "short",
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_OutboxFailureRollsBack", func(t *testing.T) {
		f := newUserFixture(t)
		user := approvedUser(domain.RoleCustomer)

		f.users.On("GetByID", ctx, user.ID).Return(user, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.users.On("UpdatePassword", ctx, user.ID, mock.Anything).Return(nil)
		f.outbox.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

		err := f.useCase.ChangePassword(ctx, user.ID, &usecase.ChangePasswordInput{
			CurrentPassword: "SecurePass123!",
			NewPassword:     "NewSecure456?",
		})

		assert.ErrorContains(t, err, "failed to create outbox event")
	})
}

func TestPrincipalLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ApprovedIsActive", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		user := approvedUser(domain.RoleEngineer)
		users.On("GetByID", ctx, user.ID).Return(user, nil)

		principal, err := usecase.NewPrincipalLookup(users).FindPrincipalByID(ctx, user.ID)

		require.NoError(t, err)
		assert.Equal(t, "ENGINEER", principal.Role)
		assert.True(t, principal.Active)
	})

	t.Run("Success_RejectedIsInactive", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		user := approvedUser(domain.RoleCustomer)
		user.Status = domain.StatusRejected
		users.On("GetByID", ctx, user.ID).Return(user, nil)

		principal, err := usecase.NewPrincipalLookup(users).FindPrincipalByID(ctx, user.ID)

		require.NoError(t, err)
		assert.False(t, principal.Active)
	})

	t.Run("Error_MissingUser", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		id := uuid.Must(uuid.NewV7())
		users.On("GetByID", ctx, id).Return(nil, domain.ErrUserNotFound)

		_, err := usecase.NewPrincipalLookup(users).FindPrincipalByID(ctx, id)

		assert.ErrorIs(t, err, sessionDomain.ErrPrincipalNotFound)
	})
}
