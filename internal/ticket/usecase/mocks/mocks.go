// Package mocks provides testify mocks for the ticket use case and repository.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/helpdesk/internal/ticket/domain"
	"github.com/allisson/helpdesk/internal/ticket/usecase"
)

func ticketResult(args mock.Arguments) (*domain.Ticket, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func ticketsResult(args mock.Arguments) ([]*domain.Ticket, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

// MockUseCase is a mock implementation of UseCase.
type MockUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockUseCase) Create(
	ctx context.Context,
	viewer domain.Viewer,
	input *usecase.CreateTicketInput,
) (*domain.Ticket, error) {
	return ticketResult(m.Called(ctx, viewer, input))
}

// Get mocks the Get method.
func (m *MockUseCase) Get(ctx context.Context, viewer domain.Viewer, id uuid.UUID) (*domain.Ticket, error) {
	return ticketResult(m.Called(ctx, viewer, id))
}

// List mocks the List method.
func (m *MockUseCase) List(
	ctx context.Context,
	viewer domain.Viewer,
	offset, limit int,
) ([]*domain.Ticket, error) {
	return ticketsResult(m.Called(ctx, viewer, offset, limit))
}

// Update mocks the Update method.
func (m *MockUseCase) Update(
	ctx context.Context,
	viewer domain.Viewer,
	id uuid.UUID,
	input *usecase.UpdateTicketInput,
) (*domain.Ticket, error) {
	return ticketResult(m.Called(ctx, viewer, id, input))
}

// MockTicketRepository is a mock implementation of TicketRepository.
type MockTicketRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

// GetByID mocks the GetByID method.
func (m *MockTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return ticketResult(m.Called(ctx, id))
}

// List mocks the List method.
func (m *MockTicketRepository) List(ctx context.Context, offset, limit int) ([]*domain.Ticket, error) {
	return ticketsResult(m.Called(ctx, offset, limit))
}

// ListByReporter mocks the ListByReporter method.
func (m *MockTicketRepository) ListByReporter(
	ctx context.Context,
	reporterID uuid.UUID,
	offset, limit int,
) ([]*domain.Ticket, error) {
	return ticketsResult(m.Called(ctx, reporterID, offset, limit))
}

// Update mocks the Update method.
func (m *MockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}
