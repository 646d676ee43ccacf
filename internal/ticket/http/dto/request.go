// Package dto provides data transfer objects for the ticket HTTP layer.
package dto

// CreateTicketRequest is the payload for opening a ticket. Priority is optional (1-4, default 4).
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    *int   `json:"priority"`
}

// UpdateTicketRequest edits a ticket. Omitted fields keep their value.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
