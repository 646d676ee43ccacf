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

// MySQLTicketRepository handles ticket persistence for MySQL
type MySQLTicketRepository struct {
	db *sql.DB
}

// NewMySQLTicketRepository creates a new MySQLTicketRepository
func NewMySQLTicketRepository(db *sql.DB) *MySQLTicketRepository {
	return &MySQLTicketRepository{db: db}
}

// Create inserts a new ticket
func (r *MySQLTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	querier := database.GetTx(ctx, r.db)

	id, err := ticket.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal ticket id")
	}
	reporterID, err := ticket.ReporterID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal reporter id")
	}
	var assigneeID []byte
	if ticket.AssigneeID != nil {
		if assigneeID, err = ticket.AssigneeID.MarshalBinary(); err != nil {
			return apperrors.Wrap(err, "failed to marshal assignee id")
		}
	}

	query := `INSERT INTO tickets (` + ticketColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query,
		id, ticket.Title, ticket.Description, int(ticket.Priority), string(ticket.Status),
		reporterID, assigneeID, ticket.CreatedAt, ticket.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create ticket")
	}
	return nil
}

// GetByID retrieves a ticket by ID
func (r *MySQLTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal ticket id")
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`

	ticket, err := scanMySQLTicket(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ticket by id")
	}
	return ticket, nil
}

// Update writes the editable fields of an existing ticket
func (r *MySQLTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	querier := database.GetTx(ctx, r.db)

	id, err := ticket.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal ticket id")
	}

	query := `UPDATE tickets SET title = ?, description = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, ticket.Title, ticket.Description, ticket.UpdatedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update ticket")
	}
	return checkTicketUpdated(result)
}

// List retrieves all tickets newest first
func (r *MySQLTicketRepository) List(ctx context.Context, offset, limit int) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.list(ctx, query, limit, offset)
}

// ListByReporter retrieves the reporter's tickets newest first
func (r *MySQLTicketRepository) ListByReporter(
	ctx context.Context,
	reporterID uuid.UUID,
	offset, limit int,
) ([]*domain.Ticket, error) {
	reporterBytes, err := reporterID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal reporter id")
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE reporter_id = ?
			  ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.list(ctx, query, reporterBytes, limit, offset)
}

func (r *MySQLTicketRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Ticket, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tickets")
	}
	defer rows.Close() //nolint:errcheck

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanMySQLTicket(rows)
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

func scanMySQLTicket(row ticketScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var idBytes, reporterBytes, assigneeBytes []byte
	var priority int
	var status string

	if err := row.Scan(
		&idBytes, &ticket.Title, &ticket.Description, &priority, &status,
		&reporterBytes, &assigneeBytes, &ticket.CreatedAt, &ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := ticket.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal ticket id")
	}
	if err := ticket.ReporterID.UnmarshalBinary(reporterBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal reporter id")
	}
	if assigneeBytes != nil {
		var assigneeID uuid.UUID
		if err := assigneeID.UnmarshalBinary(assigneeBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal assignee id")
		}
		ticket.AssigneeID = &assigneeID
	}

	ticket.Priority = domain.Priority(priority)
	ticket.Status = domain.Status(status)
	return &ticket, nil
}
