package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/helpdesk/internal/errors"
	"github.com/allisson/helpdesk/internal/ticket/domain"
	"github.com/allisson/helpdesk/internal/ticket/usecase"
	"github.com/allisson/helpdesk/internal/ticket/usecase/mocks"
)

func intPtr(v int) *int { return &v }

func newFixture(t *testing.T) (usecase.UseCase, *mocks.MockTicketRepository) {
	t.Helper()
	repo := &mocks.MockTicketRepository{}
	t.Cleanup(func() { repo.AssertExpectations(t) })
	return usecase.NewTicketUseCase(repo), repo
}

func TestTicketUseCase_Create(t *testing.T) {
	ctx := context.Background()
	customer := domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "CUSTOMER"}

	t.Run("Success_DefaultPriority", func(t *testing.T) {
		uc, repo := newFixture(t)

		repo.On("Create", ctx, mock.MatchedBy(func(ticket *domain.Ticket) bool {
			return ticket.ReporterID == customer.ID &&
				ticket.Priority == domain.DefaultPriority &&
				ticket.Status == domain.StatusOpen &&
				ticket.Title == "Printer on fire" &&
				ticket.AssigneeID == nil
		})).Return(nil).Once()

		ticket, err := uc.Create(ctx, customer, &usecase.CreateTicketInput{
			Title:       "  Printer on fire ",
			Description: "Third floor",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, ticket.ID)
		assert.Equal(t, domain.Priority(4), ticket.Priority)
	})

	t.Run("Success_ExplicitPriority", func(t *testing.T) {
		uc, repo := newFixture(t)

		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		ticket, err := uc.Create(ctx, customer, &usecase.CreateTicketInput{
			Title:       "VPN down",
			Description: "Nobody can connect",
			Priority:    intPtr(1),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.PriorityUrgent, ticket.Priority)
	})

	t.Run("Error_InvalidPriority", func(t *testing.T) {
		uc, _ := newFixture(t)

		_, err := uc.Create(ctx, customer, &usecase.CreateTicketInput{
			Title:       "VPN down",
			Description: "Nobody can connect",
			Priority:    intPtr(5),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPriority)
	})

	t.Run("Error_Validation", func(t *testing.T) {
		uc, _ := newFixture(t)

		_, err := uc.Create(ctx, customer, &usecase.CreateTicketInput{
			Title:       "",
			Description: strings.Repeat("x", 10),
		})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "title is required")
	})

	t.Run("Error_Repository", func(t *testing.T) {
		uc, repo := newFixture(t)

		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

		_, err := uc.Create(ctx, customer, &usecase.CreateTicketInput{Title: "a", Description: "b"})
		assert.Error(t, err)
	})
}

func TestTicketUseCase_Get(t *testing.T) {
	ctx := context.Background()
	reporter := uuid.Must(uuid.NewV7())
	ticket := &domain.Ticket{ID: uuid.Must(uuid.NewV7()), ReporterID: reporter, CreatedAt: time.Now()}

	t.Run("Reporter", func(t *testing.T) {
		uc, repo := newFixture(t)
		repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil).Once()

		found, err := uc.Get(ctx, domain.Viewer{ID: reporter, Role: "CUSTOMER"}, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, ticket, found)
	})

	t.Run("OtherCustomer", func(t *testing.T) {
		uc, repo := newFixture(t)
		repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil).Once()

		found, err := uc.Get(ctx, domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "CUSTOMER"}, ticket.ID)
		assert.Nil(t, found)
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	})

	t.Run("Engineer", func(t *testing.T) {
		uc, repo := newFixture(t)
		repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil).Once()

		found, err := uc.Get(ctx, domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "ENGINEER"}, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, ticket.ID, found.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		uc, repo := newFixture(t)
		repo.On("GetByID", ctx, ticket.ID).Return(nil, domain.ErrTicketNotFound).Once()

		_, err := uc.Get(ctx, domain.Viewer{ID: reporter, Role: "ADMIN"}, ticket.ID)
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	})
}

func strPtr(v string) *string { return &v }

func TestTicketUseCase_Update(t *testing.T) {
	ctx := context.Background()
	reporter := uuid.Must(uuid.NewV7())
	assignee := uuid.Must(uuid.NewV7())
	stale := time.Now().Add(-time.Hour).UTC()
	newTicket := func() *domain.Ticket {
		return &domain.Ticket{
			ID:          uuid.Must(uuid.NewV7()),
			Title:       "Printer on fire",
			Description: "Third floor",
			ReporterID:  reporter,
			AssigneeID:  &assignee,
			CreatedAt:   stale,
			UpdatedAt:   stale,
		}
	}

	t.Run("ReporterEditsTitle", func(t *testing.T) {
		uc, repo := newFixture(t)
		ticket := newTicket()
		repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil).Once()
		repo.On("Update", ctx, mock.MatchedBy(func(updated *domain.Ticket) bool {
			return updated.Title == "Printer still on fire" &&
				updated.Description == "Third floor" &&
				updated.UpdatedAt.After(stale)
		})).Return(nil).Once()

		updated, err := uc.Update(ctx, domain.Viewer{ID: reporter, Role: "CUSTOMER"}, ticket.ID,
			&usecase.UpdateTicketInput{Title: strPtr(" Printer still on fire ")})
		require.NoError(t, err)
		assert.Equal(t, "Printer still on fire", updated.Title)
		assert.Equal(t, stale, updated.CreatedAt)
	})

	t.Run("AssigneeEditsDescription", func(t *testing.T) {
		uc, repo := newFixture(t)
		ticket := newTicket()
		repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil).Once()
		repo.On("Update", ctx, ticket).Return(nil).Once()

		updated, err := uc.Update(ctx, domain.Viewer{ID: assignee, Role: "ENGINEER"}, ticket.ID,
			&usecase.UpdateTicketInput{Description: strPtr("Fourth floor")})
		require.NoError(t, err)
		assert.Equal(t, "Fourth floor", updated.Description)
		assert.Equal(t, "Printer on fire", updated.Title)
	})

	t.Run("OtherCustomerSeesNotFound", func(t *testing.T) {
		uc, repo := newFixture(t)
		ticket := newTicket()
		repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil).Once()

		_, err := uc.Update(ctx, domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "CUSTOMER"}, ticket.ID,
			&usecase.UpdateTicketInput{Title: strPtr("mine now")})
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("UnassignedEngineerForbidden", func(t *testing.T) {
		uc, repo := newFixture(t)
		ticket := newTicket()
		repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil).Once()

		_, err := uc.Update(ctx, domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "ENGINEER"}, ticket.ID,
			&usecase.UpdateTicketInput{Title: strPtr("renamed")})
		assert.ErrorIs(t, err, domain.ErrTicketEditForbidden)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Equal(t, "Printer on fire", ticket.Title)
	})

	t.Run("NothingToUpdate", func(t *testing.T) {
		uc, _ := newFixture(t)

		_, err := uc.Update(ctx, domain.Viewer{ID: reporter, Role: "CUSTOMER"}, uuid.Must(uuid.NewV7()),
			&usecase.UpdateTicketInput{})
		assert.ErrorIs(t, err, domain.ErrNothingToUpdate)
	})

	t.Run("BlankTitle", func(t *testing.T) {
		uc, _ := newFixture(t)

		_, err := uc.Update(ctx, domain.Viewer{ID: reporter, Role: "CUSTOMER"}, uuid.Must(uuid.NewV7()),
			&usecase.UpdateTicketInput{Title: strPtr("   ")})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		uc, repo := newFixture(t)
		ticket := newTicket()
		repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil).Once()
		repo.On("Update", ctx, ticket).Return(errors.New("connection reset")).Once()

		_, err := uc.Update(ctx, domain.Viewer{ID: reporter, Role: "ADMIN"}, ticket.ID,
			&usecase.UpdateTicketInput{Title: strPtr("renamed")})
		assert.EqualError(t, err, "connection reset")
	})
}

func TestTicketUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("CustomerSeesOwn", func(t *testing.T) {
		uc, repo := newFixture(t)
		viewer := domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "CUSTOMER"}
		own := []*domain.Ticket{{ID: uuid.Must(uuid.NewV7()), ReporterID: viewer.ID}}

		repo.On("ListByReporter", ctx, viewer.ID, 0, 50).Return(own, nil).Once()

		tickets, err := uc.List(ctx, viewer, 0, 50)
		require.NoError(t, err)
		assert.Equal(t, own, tickets)
	})

	t.Run("AdminSeesAll", func(t *testing.T) {
		uc, repo := newFixture(t)
		viewer := domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "ADMIN"}

		repo.On("List", ctx, 10, 20).Return([]*domain.Ticket{}, nil).Once()

		tickets, err := uc.List(ctx, viewer, 10, 20)
		require.NoError(t, err)
		assert.Empty(t, tickets)
	})
}

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func TestTicketUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	viewer := domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "CUSTOMER"}

	expect := func(m *mockBusinessMetrics, operation, status string) {
		m.On("RecordOperation", ctx, "ticket", operation, status).Return().Once()
		m.On("RecordDuration", ctx, "ticket", operation, mock.AnythingOfType("time.Duration"), status).
			Return().
			Once()
	}

	t.Run("Create success", func(t *testing.T) {
		next := &mocks.MockUseCase{}
		m := &mockBusinessMetrics{}
		uc := usecase.NewTicketUseCaseWithMetrics(next, m)

		input := &usecase.CreateTicketInput{Title: "a", Description: "b"}
		next.On("Create", ctx, viewer, input).Return(&domain.Ticket{}, nil).Once()
		expect(m, "create", "success")

		_, err := uc.Create(ctx, viewer, input)
		assert.NoError(t, err)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Get error", func(t *testing.T) {
		next := &mocks.MockUseCase{}
		m := &mockBusinessMetrics{}
		uc := usecase.NewTicketUseCaseWithMetrics(next, m)

		id := uuid.Must(uuid.NewV7())
		next.On("Get", ctx, viewer, id).Return(nil, domain.ErrTicketNotFound).Once()
		expect(m, "get", "error")

		_, err := uc.Get(ctx, viewer, id)
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)
		m.AssertExpectations(t)
	})

	t.Run("Update error", func(t *testing.T) {
		next := &mocks.MockUseCase{}
		m := &mockBusinessMetrics{}
		uc := usecase.NewTicketUseCaseWithMetrics(next, m)

		id := uuid.Must(uuid.NewV7())
		input := &usecase.UpdateTicketInput{Title: strPtr("renamed")}
		next.On("Update", ctx, viewer, id, input).Return(nil, domain.ErrTicketEditForbidden).Once()
		expect(m, "update", "error")

		_, err := uc.Update(ctx, viewer, id, input)
		assert.ErrorIs(t, err, domain.ErrTicketEditForbidden)
		m.AssertExpectations(t)
	})

	t.Run("List success", func(t *testing.T) {
		next := &mocks.MockUseCase{}
		m := &mockBusinessMetrics{}
		uc := usecase.NewTicketUseCaseWithMetrics(next, m)

		next.On("List", ctx, viewer, 0, 10).Return([]*domain.Ticket{}, nil).Once()
		expect(m, "list", "success")

		_, err := uc.List(ctx, viewer, 0, 10)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
}
