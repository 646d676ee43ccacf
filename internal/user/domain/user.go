// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/errors"
)

// Role is the helpdesk role of a user. It is carried in access tokens.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleEngineer Role = "ENGINEER"
	RoleAdmin    Role = "ADMIN"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleEngineer, RoleAdmin:
		return true
	}
	return false
}

// Status is the approval state of a user. Only approved users can log in.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID        uuid.UUID
	Name      string
	Username  string
	Email     string
	Password  string
	Role      Role
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsApproved reports whether the user may hold sessions.
func (u *User) IsApproved() bool {
	return u.Status == StatusApproved
}

// InitialStatus returns the status a self-registered user starts with.
// Engineers wait for an administrator; customers are approved immediately.
func InitialStatus(role Role) Status {
	if role == RoleEngineer {
		return StatusPending
	}
	return StatusApproved
}

// Outbox event types published by the user module.
const (
	EventUserRegistered  = "user.registered"
	EventPasswordChanged = "user.password_changed"
)

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same username or email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrInvalidCredentials is returned for an unknown login and for a wrong password alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrUserNotApproved indicates the credentials are valid but the account is pending or rejected.
	ErrUserNotApproved = errors.Wrap(errors.ErrForbidden, "user is not approved")

	// ErrWrongCurrentPassword indicates a password change whose current password did not match.
	ErrWrongCurrentPassword = errors.Wrap(errors.ErrInvalidInput, "current password is incorrect")

	// ErrAdminRegistration indicates an attempt to self-register as an administrator.
	ErrAdminRegistration = errors.Wrap(errors.ErrInvalidInput, "admin users cannot self-register")

	// ErrInvalidRole indicates an unknown role value.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "invalid role")

	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.Wrap(errors.ErrInvalidInput, "invalid status")
)
