// Package domain defines the ticket entity and the rules for who may see a ticket.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/errors"
	userDomain "github.com/allisson/helpdesk/internal/user/domain"
)

// Priority ranks a ticket from 1 (urgent) to 4 (low).
type Priority int

const (
	PriorityUrgent  Priority = 1
	PriorityLow     Priority = 4
	DefaultPriority          = PriorityLow
)

// IsValid reports whether p is within 1-4.
func (p Priority) IsValid() bool {
	return p >= PriorityUrgent && p <= PriorityLow
}

// Status is the ticket state. New tickets are OPEN; transitions are not modelled.
type Status string

const StatusOpen Status = "OPEN"

// Ticket is a customer support request.
type Ticket struct {
	ID          uuid.UUID
	Title       string
	Description string
	Priority    Priority
	Status      Status
	ReporterID  uuid.UUID
	AssigneeID  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Viewer is the authenticated caller as seen by the ticket rules.
type Viewer struct {
	ID   uuid.UUID
	Role string
}

// SeesAllTickets reports whether the viewer may read tickets reported by others.
func (v Viewer) SeesAllTickets() bool {
	role := userDomain.Role(v.Role)
	return role == userDomain.RoleEngineer || role == userDomain.RoleAdmin
}

// CanView reports whether the viewer may read t.
func (v Viewer) CanView(t *Ticket) bool {
	return v.SeesAllTickets() || t.ReporterID == v.ID
}

// CanEdit reports whether the viewer may change the title and description of t.
// Only the reporter, the assignee, or an admin may.
func (v Viewer) CanEdit(t *Ticket) bool {
	if t.ReporterID == v.ID || userDomain.Role(v.Role) == userDomain.RoleAdmin {
		return true
	}
	return t.AssigneeID != nil && *t.AssigneeID == v.ID
}

var (
	// ErrTicketNotFound indicates the ticket does not exist or is not visible to the caller.
	ErrTicketNotFound = errors.Wrap(errors.ErrNotFound, "ticket not found")

	// ErrInvalidPriority indicates a priority outside 1-4.
	ErrInvalidPriority = errors.Wrap(errors.ErrInvalidInput, "priority must be between 1 and 4")
	// ErrTicketEditForbidden indicates a visible ticket the caller may not change.
	ErrTicketEditForbidden = errors.Wrap(errors.ErrForbidden, "ticket can only be edited by its reporter")
	// ErrNothingToUpdate indicates an update that names no field.
	ErrNothingToUpdate = errors.Wrap(errors.ErrInvalidInput, "title or description is required")
)
