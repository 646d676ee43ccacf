package domain

import (
	"github.com/allisson/helpdesk/internal/errors"
)

// Lifecycle failures. The first four all mean "log in again" and share one
// HTTP response; they differ only in logs and metrics.
var (
	// ErrInvalidToken indicates a malformed, wrongly signed, expired or wrong-kind token.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrSessionRevoked indicates the refresh token's session no longer exists.
	ErrSessionRevoked = errors.Wrap(errors.ErrUnauthorized, "session revoked")

	// ErrTokenReuseDetected indicates a refresh token that is not the session's current one.
	ErrTokenReuseDetected = errors.Wrap(errors.ErrUnauthorized, "refresh token reuse detected")

	// ErrSessionExpired indicates the session was found and matched but is past its expiry.
	ErrSessionExpired = errors.Wrap(errors.ErrUnauthorized, "session expired")

	// ErrStorageUnavailable indicates the session ledger could not be reached. It never
	// triggers revocation.
	ErrStorageUnavailable = errors.Wrap(errors.ErrUnavailable, "session storage unavailable")
)

// Ledger-level outcomes, translated by the lifecycle into the errors above.
var (
	// ErrSessionNotFound indicates no session exists for the principal and session id.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "session not found")

	// ErrSessionConflict indicates a compare-and-swap lost: the stored hash changed or the row is gone.
	ErrSessionConflict = errors.Wrap(errors.ErrConflict, "session token changed concurrently")

	// ErrPrincipalNotFound indicates the principal referenced by a token does not exist.
	ErrPrincipalNotFound = errors.Wrap(errors.ErrNotFound, "principal not found")

	// ErrInvalidRevocationPolicy indicates an unknown revocation policy value.
	ErrInvalidRevocationPolicy = errors.Wrap(errors.ErrInvalidInput, "invalid revocation policy")
)
