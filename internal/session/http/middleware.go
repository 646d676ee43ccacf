package http

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/helpdesk/internal/errors"
	"github.com/allisson/helpdesk/internal/httputil"
	sessionService "github.com/allisson/helpdesk/internal/session/service"
)

// Cookie names carrying the token pair for browser clients.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// bearerToken extracts the token of an "Authorization: Bearer <token>" header
// (case-insensitive scheme). It returns "" when the header is absent or malformed.
func bearerToken(c *gin.Context) string {
	const bearerPrefix = "bearer "
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(bearerPrefix):])
}

// accessToken reads the access token from the Bearer header, falling back to the cookie.
func accessToken(c *gin.Context) string {
	if token := bearerToken(c); token != "" {
		return token
	}
	token, err := c.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

// AuthenticationMiddleware verifies the access token and stores its claims in the
// request context. Verification is signature, expiry and claim schema only; the
// session ledger is not consulted, so a logged-out access token stays usable until
// it expires.
//
// The token is taken from "Authorization: Bearer <token>" or the accessToken cookie.
// Any failure answers 401 with the same body.
func AuthenticationMiddleware(codec sessionService.TokenCodec, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			logger.Debug("authentication failed: missing access token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		claims, err := codec.VerifyAccessToken(token)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, nil)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), claims))

		logger.Debug("authentication successful",
			slog.String("principal_id", claims.PrincipalID.String()),
			slog.String("session_id", claims.SessionID.String()))

		c.Next()
	}
}

// AuthorizationMiddleware allows the request only when the role claim is one of roles.
// It must run after AuthenticationMiddleware.
func AuthorizationMiddleware(logger *slog.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetPrincipal(c.Request.Context())
		if !ok {
			logger.Debug("authorization failed: no authenticated principal in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		if !slices.Contains(roles, claims.Role) {
			logger.Debug("authorization failed: role not allowed",
				slog.String("principal_id", claims.PrincipalID.String()),
				slog.String("role", claims.Role),
				slog.String("path", c.Request.URL.Path))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
