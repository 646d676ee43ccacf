// Package http provides the session HTTP handlers and the access-token middleware
// shared by every authenticated route.
package http

import (
	"context"

	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

// principalKey is a context key type for storing verified access claims.
type principalKey struct{}

// WithPrincipal stores verified access claims in the context.
func WithPrincipal(ctx context.Context, claims *sessionDomain.AccessClaims) context.Context {
	return context.WithValue(ctx, principalKey{}, claims)
}

// GetPrincipal retrieves the access claims set by AuthenticationMiddleware.
// Returns (claims, true) if present, or (nil, false) otherwise.
func GetPrincipal(ctx context.Context) (*sessionDomain.AccessClaims, bool) {
	claims, ok := ctx.Value(principalKey{}).(*sessionDomain.AccessClaims)
	return claims, ok && claims != nil
}
