package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
	"github.com/allisson/helpdesk/internal/user/domain"
)

// principalLookup adapts the user store to the token lifecycle.
type principalLookup struct {
	userRepo UserRepository
}

// NewPrincipalLookup exposes users as session principals. Only approved users are active.
func NewPrincipalLookup(userRepo UserRepository) PrincipalFinder {
	return &principalLookup{userRepo: userRepo}
}

// FindPrincipalByID returns the principal or sessionDomain.ErrPrincipalNotFound.
func (p *principalLookup) FindPrincipalByID(
	ctx context.Context,
	id uuid.UUID,
) (*sessionDomain.Principal, error) {
	user, err := p.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, sessionDomain.ErrPrincipalNotFound
		}
		return nil, err
	}

	return &sessionDomain.Principal{
		ID:     user.ID,
		Role:   string(user.Role),
		Active: user.IsApproved(),
	}, nil
}
