// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/helpdesk/internal/user/domain"
)

// RegisterUserRequest represents the API request for self-registration.
// Field rules are enforced by the use case; the request only shapes the payload.
type RegisterUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field
	Role     string `json:"role"`
}

// UpdateUserRequest is an administrator's change of role and/or status.
type UpdateUserRequest struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

// Validate checks that at least one field is present and that present fields hold known values.
func (r *UpdateUserRequest) Validate() error {
	if r.Role == nil && r.Status == nil {
		return validation.NewError("validation_empty_update", "role or status is required")
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Role,
			validation.NilOrNotEmpty,
			validation.In(string(domain.RoleCustomer), string(domain.RoleEngineer), string(domain.RoleAdmin)),
		),
		validation.Field(&r.Status,
			validation.NilOrNotEmpty,
			validation.In(string(domain.StatusPending), string(domain.StatusApproved), string(domain.StatusRejected)),
		),
	)
}

// ChangePasswordRequest is a user's own password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"` //nolint:gosec // request field
	NewPassword     string `json:"new_password"`     //nolint:gosec // request field
}
