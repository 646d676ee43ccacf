package dto

import (
	"github.com/allisson/helpdesk/internal/user/domain"
	"github.com/allisson/helpdesk/internal/user/usecase"
)

// ToRegisterUserInput converts a RegisterUserRequest DTO to a RegisterUserInput use case input
func ToRegisterUserInput(req RegisterUserRequest) *usecase.RegisterUserInput {
	return &usecase.RegisterUserInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	}
}

// ToUpdateUserInput converts an UpdateUserRequest DTO to an UpdateUserInput use case input
func ToUpdateUserInput(req UpdateUserRequest) *usecase.UpdateUserInput {
	input := &usecase.UpdateUserInput{}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		input.Status = &status
	}
	return input
}

// ToChangePasswordInput converts a ChangePasswordRequest DTO to a ChangePasswordInput use case input
func ToChangePasswordInput(req ChangePasswordRequest) *usecase.ChangePasswordInput {
	return &usecase.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}
}

// ToUserResponse converts a domain User model to a UserResponse DTO
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToListUsersResponse converts users to a list response
func ToListUsersResponse(users []*domain.User) ListUsersResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, ToUserResponse(user))
	}
	return ListUsersResponse{Data: responses}
}
