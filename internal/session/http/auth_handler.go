package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/helpdesk/internal/errors"
	"github.com/allisson/helpdesk/internal/httputil"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
	"github.com/allisson/helpdesk/internal/session/http/dto"
	sessionUseCase "github.com/allisson/helpdesk/internal/session/usecase"
	userDomain "github.com/allisson/helpdesk/internal/user/domain"
	customValidation "github.com/allisson/helpdesk/internal/validation"
)

// maxRefreshBodyBytes bounds the optional JSON body of a refresh call.
const maxRefreshBodyBytes = 16 << 10

// CredentialChecker verifies a login key and password. Implemented by the user use case.
type CredentialChecker interface {
	Authenticate(ctx context.Context, login, password string) (*userDomain.User, error)
}

// AuthHandler serves login, refresh, logout and the session listing.
type AuthHandler struct {
	credentials CredentialChecker
	sessions    sessionUseCase.SessionUseCase
	cookies     CookieConfig
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	credentials CredentialChecker,
	sessions sessionUseCase.SessionUseCase,
	cookies CookieConfig,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		sessions:    sessions,
		cookies:     cookies,
		logger:      logger,
	}
}

func clientMeta(c *gin.Context) sessionDomain.ClientMeta {
	return sessionDomain.ClientMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// LoginHandler checks credentials and opens a session.
// POST /v1/auth/login - Returns 200 OK with the token pair, also set as cookies.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()

	user, err := h.credentials.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	pair, err := h.sessions.Login(ctx, &sessionDomain.LoginInput{
		PrincipalID: user.ID,
		Role:        string(user.Role),
		ClientMeta:  clientMeta(c),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.cookies.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// refreshToken reads the refresh token from the cookie, then the JSON body, then
// the Bearer header. A malformed body is treated as absent.
func (h *AuthHandler) refreshToken(c *gin.Context) string {
	if token, err := c.Cookie(RefreshTokenCookie); err == nil && token != "" {
		return token
	}

	if c.Request.Body != nil {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRefreshBodyBytes))
		if err == nil && len(bytes.TrimSpace(body)) > 0 {
			var req dto.RefreshRequest
			if json.Unmarshal(body, &req) == nil && req.RefreshToken != "" {
				return req.RefreshToken
			}
		}
	}

	return bearerToken(c)
}

// RefreshHandler rotates a refresh token.
// POST /v1/auth/refresh - Returns 200 OK with the new pair. Every authentication
// failure answers the same 401 and clears the cookies; storage failures answer 503
// and leave them in place.
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	token := h.refreshToken(c)
	if token == "" {
		h.cookies.clearTokenCookies(c)
		httputil.HandleErrorGin(c, sessionDomain.ErrInvalidToken, nil)
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), token, clientMeta(c))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			h.cookies.clearTokenCookies(c)
			httputil.HandleErrorGin(c, err, nil)
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.cookies.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// LogoutHandler ends the session named by the access token's sid claim.
// POST /v1/auth/logout - Returns 204 No Content and clears the cookies.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	claims, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), claims.PrincipalID, claims.SessionID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.cookies.clearTokenCookies(c)
	c.Data(http.StatusNoContent, "application/json", nil)
}

// LogoutAllHandler ends every session of the caller.
// POST /v1/auth/logout-all - Returns 200 OK with the number of sessions removed.
func (h *AuthHandler) LogoutAllHandler(c *gin.Context) {
	claims, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	revoked, err := h.sessions.RevokeAll(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.cookies.clearTokenCookies(c)
	c.JSON(http.StatusOK, dto.RevokeAllResponse{Revoked: revoked})
}

// ListSessionsHandler lists the caller's sessions, flagging the current one.
// GET /v1/auth/sessions - Returns 200 OK.
func (h *AuthHandler) ListSessionsHandler(c *gin.Context) {
	claims, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	sessions, err := h.sessions.ListSessions(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionsToListResponse(sessions, claims.SessionID.String()))
}
