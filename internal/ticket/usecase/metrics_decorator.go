package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/metrics"
	"github.com/allisson/helpdesk/internal/ticket/domain"
)

// ticketUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type ticketUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewTicketUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewTicketUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &ticketUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *ticketUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "ticket", operation, status)
	t.metrics.RecordDuration(ctx, "ticket", operation, time.Since(start), status)
}

// Create records metrics for ticket creation.
func (t *ticketUseCaseWithMetrics) Create(
	ctx context.Context,
	viewer domain.Viewer,
	input *CreateTicketInput,
) (*domain.Ticket, error) {
	start := time.Now()
	ticket, err := t.next.Create(ctx, viewer, input)
	t.record(ctx, "create", start, err)
	return ticket, err
}

// Get records metrics for ticket lookups.
func (t *ticketUseCaseWithMetrics) Get(
	ctx context.Context,
	viewer domain.Viewer,
	id uuid.UUID,
) (*domain.Ticket, error) {
	start := time.Now()
	ticket, err := t.next.Get(ctx, viewer, id)
	t.record(ctx, "get", start, err)
	return ticket, err
}

// Update records metrics for ticket edits.
func (t *ticketUseCaseWithMetrics) Update(
	ctx context.Context,
	viewer domain.Viewer,
	id uuid.UUID,
	input *UpdateTicketInput,
) (*domain.Ticket, error) {
	start := time.Now()
	ticket, err := t.next.Update(ctx, viewer, id, input)
	t.record(ctx, "update", start, err)
	return ticket, err
}

// List records metrics for ticket listings.
func (t *ticketUseCaseWithMetrics) List(
	ctx context.Context,
	viewer domain.Viewer,
	offset, limit int,
) ([]*domain.Ticket, error) {
	start := time.Now()
	tickets, err := t.next.List(ctx, viewer, offset, limit)
	t.record(ctx, "list", start, err)
	return tickets, err
}
