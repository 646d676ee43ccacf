package dto

import (
	"time"

	"github.com/allisson/helpdesk/internal/ticket/domain"
)

// TicketResponse represents a ticket in API responses.
type TicketResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	Status      string    `json:"status"`
	ReporterID  string    `json:"reporter_id"`
	AssigneeID  *string   `json:"assignee_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListTicketsResponse represents a paginated list of tickets.
type ListTicketsResponse struct {
	Data []TicketResponse `json:"data"`
}

// MapTicketToResponse converts a domain ticket to an API response.
func MapTicketToResponse(ticket *domain.Ticket) TicketResponse {
	response := TicketResponse{
		ID:          ticket.ID.String(),
		Title:       ticket.Title,
		Description: ticket.Description,
		Priority:    int(ticket.Priority),
		Status:      string(ticket.Status),
		ReporterID:  ticket.ReporterID.String(),
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
	if ticket.AssigneeID != nil {
		assignee := ticket.AssigneeID.String()
		response.AssigneeID = &assignee
	}
	return response
}

// MapTicketsToListResponse converts domain tickets to a list response.
func MapTicketsToListResponse(tickets []*domain.Ticket) ListTicketsResponse {
	responses := make([]TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		responses = append(responses, MapTicketToResponse(ticket))
	}
	return ListTicketsResponse{Data: responses}
}
