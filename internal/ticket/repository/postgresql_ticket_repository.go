// Package repository provides data persistence implementations for tickets.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/database"
	apperrors "github.com/allisson/helpdesk/internal/errors"
	"github.com/allisson/helpdesk/internal/ticket/domain"
)

const ticketColumns = `id, title, description, priority, status, reporter_id, assignee_id, created_at, updated_at`

// PostgreSQLTicketRepository handles ticket persistence for PostgreSQL
type PostgreSQLTicketRepository struct {
	db *sql.DB
}

// NewPostgreSQLTicketRepository creates a new PostgreSQLTicketRepository
func NewPostgreSQLTicketRepository(db *sql.DB) *PostgreSQLTicketRepository {
	return &PostgreSQLTicketRepository{db: db}
}

// Create inserts a new ticket
func (r *PostgreSQLTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tickets (` + ticketColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(ctx, query,
		ticket.ID, ticket.Title, ticket.Description, int(ticket.Priority), string(ticket.Status),
		ticket.ReporterID, ticket.AssigneeID, ticket.CreatedAt, ticket.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create ticket")
	}
	return nil
}

// GetByID retrieves a ticket by ID
func (r *PostgreSQLTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanPostgreSQLTicket(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ticket by id")
	}
	return ticket, nil
}

// Update writes the editable fields of an existing ticket
func (r *PostgreSQLTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE tickets SET title = $1, description = $2, updated_at = $3 WHERE id = $4`

	result, err := querier.ExecContext(ctx, query, ticket.Title, ticket.Description, ticket.UpdatedAt, ticket.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update ticket")
	}
	return checkTicketUpdated(result)
}

// List retrieves all tickets newest first
func (r *PostgreSQLTicketRepository) List(ctx context.Context, offset, limit int) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

// ListByReporter retrieves the reporter's tickets newest first
func (r *PostgreSQLTicketRepository) ListByReporter(
	ctx context.Context,
	reporterID uuid.UUID,
	offset, limit int,
) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE reporter_id = $1
			  ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, reporterID, limit, offset)
}

func (r *PostgreSQLTicketRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Ticket, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tickets")
	}
	defer rows.Close() //nolint:errcheck

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanPostgreSQLTicket(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan ticket")
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tickets")
	}
	return tickets, nil
}

type ticketScanner interface {
	Scan(dest ...any) error
}

func scanPostgreSQLTicket(row ticketScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var priority int
	var status string
	var assigneeID uuid.NullUUID

	if err := row.Scan(
		&ticket.ID, &ticket.Title, &ticket.Description, &priority, &status,
		&ticket.ReporterID, &assigneeID, &ticket.CreatedAt, &ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}

	ticket.Priority = domain.Priority(priority)
	ticket.Status = domain.Status(status)
	if assigneeID.Valid {
		ticket.AssigneeID = &assigneeID.UUID
	}
	return &ticket, nil
}

func checkTicketUpdated(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}
