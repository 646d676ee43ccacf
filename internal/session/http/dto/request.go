// Package dto provides data transfer objects for the session HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/helpdesk/internal/validation"
)

// LoginRequest carries a login key (username or email) and a password.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"` //nolint:gosec // request field
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Login,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(1, 128),
		),
	)
}

// RefreshRequest is the optional JSON body of a refresh call. Browsers send the
// refresh token as a cookie instead.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"` //nolint:gosec // request field
}
