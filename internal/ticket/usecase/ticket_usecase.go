package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/helpdesk/internal/ticket/domain"
	appValidation "github.com/allisson/helpdesk/internal/validation"
)

// TicketUseCase handles ticket business logic
type TicketUseCase struct {
	ticketRepo TicketRepository
}

// NewTicketUseCase creates a new TicketUseCase
func NewTicketUseCase(ticketRepo TicketRepository) UseCase {
	return &TicketUseCase{ticketRepo: ticketRepo}
}

func (uc *TicketUseCase) validateCreateInput(input *CreateTicketInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Title,
			validation.Required.Error("title is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("title must be between 1 and 255 characters"),
		),
		validation.Field(&input.Description,
			validation.Required.Error("description is required"),
			appValidation.NotBlank,
			validation.Length(1, 10000).Error("description must be at most 10000 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

func (uc *TicketUseCase) validateUpdateInput(input *UpdateTicketInput) error {
	if input.Title == nil && input.Description == nil {
		return domain.ErrNothingToUpdate
	}
	err := validation.ValidateStruct(input,
		validation.Field(&input.Title,
			validation.NilOrNotEmpty.Error("title cannot be empty"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("title must be between 1 and 255 characters"),
		),
		validation.Field(&input.Description,
			validation.NilOrNotEmpty.Error("description cannot be empty"),
			appValidation.NotBlank,
			validation.Length(1, 10000).Error("description must be at most 10000 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Create opens a ticket reported by the viewer with status OPEN.
func (uc *TicketUseCase) Create(
	ctx context.Context,
	viewer domain.Viewer,
	input *CreateTicketInput,
) (*domain.Ticket, error) {
	if err := uc.validateCreateInput(input); err != nil {
		return nil, err
	}

	priority := domain.DefaultPriority
	if input.Priority != nil {
		priority = domain.Priority(*input.Priority)
		if !priority.IsValid() {
			return nil, domain.ErrInvalidPriority
		}
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ID:          uuid.Must(uuid.NewV7()),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		Status:      domain.StatusOpen,
		ReporterID:  viewer.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Get returns a ticket the viewer may see. A customer asking for another
// customer's ticket gets ErrTicketNotFound.
func (uc *TicketUseCase) Get(ctx context.Context, viewer domain.Viewer, id uuid.UUID) (*domain.Ticket, error) {
	ticket, err := uc.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanView(ticket) {
		return nil, domain.ErrTicketNotFound
	}
	return ticket, nil
}

// Update changes the title and description of a ticket. Tickets the viewer cannot
// see are reported as ErrTicketNotFound. Visible tickets the viewer may not edit
// yield ErrTicketEditForbidden.
func (uc *TicketUseCase) Update(
	ctx context.Context,
	viewer domain.Viewer,
	id uuid.UUID,
	input *UpdateTicketInput,
) (*domain.Ticket, error) {
	if err := uc.validateUpdateInput(input); err != nil {
		return nil, err
	}

	ticket, err := uc.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanEdit(ticket) {
		return nil, domain.ErrTicketEditForbidden
	}

	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	ticket.UpdatedAt = time.Now().UTC()

	if err := uc.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// List returns the viewer's own tickets for customers and every ticket otherwise.
func (uc *TicketUseCase) List(
	ctx context.Context,
	viewer domain.Viewer,
	offset, limit int,
) ([]*domain.Ticket, error) {
	if viewer.SeesAllTickets() {
		return uc.ticketRepo.List(ctx, offset, limit)
	}
	return uc.ticketRepo.ListByReporter(ctx, viewer.ID, offset, limit)
}
