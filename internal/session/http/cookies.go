package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

// refreshCookiePath scopes the refresh cookie to the auth endpoints so it is not
// sent with every API call.
const refreshCookiePath = "/v1/auth"

// CookieConfig holds the attributes of the token cookies.
type CookieConfig struct {
	Secure bool
	Domain string
}

func (cfg CookieConfig) set(c *gin.Context, name, value string, maxAge int, path string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, path, cfg.Domain, cfg.Secure, true)
}

// setTokenCookies writes both tokens as HttpOnly cookies that expire with the tokens.
func (cfg CookieConfig) setTokenCookies(c *gin.Context, pair *sessionDomain.TokenPair) {
	cfg.set(c, AccessTokenCookie, pair.AccessToken, secondsUntil(pair.AccessTokenExpiresAt), "/")
	cfg.set(c, RefreshTokenCookie, pair.RefreshToken, secondsUntil(pair.RefreshTokenExpiresAt), refreshCookiePath)
}

// clearTokenCookies expires both token cookies.
func (cfg CookieConfig) clearTokenCookies(c *gin.Context) {
	cfg.set(c, AccessTokenCookie, "", -1, "/")
	cfg.set(c, RefreshTokenCookie, "", -1, refreshCookiePath)
}

func secondsUntil(t time.Time) int {
	seconds := int(time.Until(t).Seconds())
	if seconds < 1 {
		return -1
	}
	return seconds
}
