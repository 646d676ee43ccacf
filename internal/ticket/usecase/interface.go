// Package usecase implements ticket creation, reporter edits and visibility-scoped reads.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/ticket/domain"
)

// CreateTicketInput contains the input data for opening a ticket.
type CreateTicketInput struct {
	Title       string
	Description string
	// Priority defaults to 4 when nil.
	Priority *int
}

// UpdateTicketInput carries the fields a reporter may edit. Nil leaves a field unchanged.
type UpdateTicketInput struct {
	Title       *string
	Description *string
}

// UseCase defines the ticket operations exposed to handlers.
type UseCase interface {
	Create(ctx context.Context, viewer domain.Viewer, input *CreateTicketInput) (*domain.Ticket, error)
	Get(ctx context.Context, viewer domain.Viewer, id uuid.UUID) (*domain.Ticket, error)
	List(ctx context.Context, viewer domain.Viewer, offset, limit int) ([]*domain.Ticket, error)
	Update(ctx context.Context, viewer domain.Viewer, id uuid.UUID, input *UpdateTicketInput) (*domain.Ticket, error)
}

// TicketRepository defines ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	// List returns all tickets, newest first.
	List(ctx context.Context, offset, limit int) ([]*domain.Ticket, error)
	// ListByReporter returns the reporter's tickets, newest first.
	ListByReporter(ctx context.Context, reporterID uuid.UUID, offset, limit int) ([]*domain.Ticket, error)
	// Update persists title, description and updated_at of an existing ticket.
	Update(ctx context.Context, ticket *domain.Ticket) error
}
