package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/helpdesk/internal/errors"
	"github.com/allisson/helpdesk/internal/httputil"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = time.Hour
)

// limiterStore holds one token bucket per key. Idle buckets are dropped during
// lookups once per sweep interval, so the store needs no background goroutine.
type limiterStore[K comparable] struct {
	mu        sync.Mutex
	limiters  map[K]*limiterEntry
	rps       float64
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func newLimiterStore[K comparable](rps float64, burst int) *limiterStore[K] {
	return &limiterStore[K]{
		limiters:  make(map[K]*limiterEntry),
		rps:       rps,
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// getLimiter retrieves or creates the bucket for key.
func (s *limiterStore[K]) getLimiter(key K) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= limiterSweepInterval {
		s.sweep(now)
	}

	if entry, ok := s.limiters[key]; ok {
		entry.lastAccess = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(s.rps), s.burst)
	s.limiters[key] = &limiterEntry{limiter: limiter, lastAccess: now}
	return limiter
}

// sweep removes buckets not used within limiterIdleTTL. Caller holds mu.
func (s *limiterStore[K]) sweep(now time.Time) {
	threshold := now.Add(-limiterIdleTTL)
	for key, entry := range s.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(s.limiters, key)
		}
	}
	s.lastSweep = now
}

func (s *limiterStore[K]) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// tooManyRequests writes a 429 with a Retry-After header computed from the bucket.
func tooManyRequests(c *gin.Context, limiter *rate.Limiter, message string) int {
	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds())
	reservation.Cancel()

	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":   "rate_limit_exceeded",
		"message": message,
	})
	c.Abort()
	return retryAfter
}

// RateLimitMiddleware enforces a token bucket per authenticated principal.
// It must run after AuthenticationMiddleware.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore[uuid.UUID](rps, burst)

	return func(c *gin.Context) {
		claims, ok := GetPrincipal(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no authenticated principal in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		limiter := store.getLimiter(claims.PrincipalID)
		if !limiter.Allow() {
			retryAfter := tooManyRequests(c, limiter,
				"Too many requests. Please retry after the specified delay.")
			logger.Debug("rate limit exceeded",
				slog.String("principal_id", claims.PrincipalID.String()),
				slog.Int("retry_after", retryAfter))
			return
		}

		c.Next()
	}
}

// AuthRateLimitMiddleware enforces a token bucket per client IP on the unauthenticated
// login, register and refresh endpoints. c.ClientIP honours the trusted proxy headers.
func AuthRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore[string](rps, burst)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		limiter := store.getLimiter(clientIP)
		if !limiter.Allow() {
			retryAfter := tooManyRequests(c, limiter,
				"Too many authentication requests from this IP. Please retry after the specified delay.")
			logger.Debug("auth rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter))
			return
		}

		c.Next()
	}
}
