package dto

import (
	"time"

	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

// TokenPairResponse is returned by login and refresh. The same tokens are also set as cookies.
type TokenPairResponse struct {
	SessionID             string    `json:"session_id"`
	AccessToken           string    `json:"access_token"`  //nolint:gosec // response field
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"` //nolint:gosec // response field
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// MapTokenPairToResponse converts a token pair to an API response.
func MapTokenPairToResponse(pair *sessionDomain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		SessionID:             pair.SessionID.String(),
		AccessToken:           pair.AccessToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}
}

// SessionResponse describes one device session. The token hash is never exposed.
type SessionResponse struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ListSessionsResponse is the list of the caller's sessions.
type ListSessionsResponse struct {
	Data []SessionResponse `json:"data"`
}

// MapSessionsToListResponse converts sessions to a list response, flagging currentID.
func MapSessionsToListResponse(
	sessions []*sessionDomain.Session,
	currentID string,
) ListSessionsResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		id := session.ID.String()
		responses = append(responses, SessionResponse{
			ID:        id,
			IPAddress: session.ClientMeta.IPAddress,
			UserAgent: session.ClientMeta.UserAgent,
			Current:   id == currentID,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
			ExpiresAt: session.ExpiresAt,
		})
	}
	return ListSessionsResponse{Data: responses}
}

// RevokeAllResponse reports how many sessions a logout-all removed.
type RevokeAllResponse struct {
	Revoked int64 `json:"revoked"`
}
