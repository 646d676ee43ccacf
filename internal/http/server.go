// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/config"
	"github.com/allisson/helpdesk/internal/metrics"
	sessionHTTP "github.com/allisson/helpdesk/internal/session/http"
	sessionService "github.com/allisson/helpdesk/internal/session/service"
	ticketHTTP "github.com/allisson/helpdesk/internal/ticket/http"
	userDomain "github.com/allisson/helpdesk/internal/user/domain"
	userHTTP "github.com/allisson/helpdesk/internal/user/http"
)

// readinessTimeout bounds each dependency ping of /ready.
const readinessTimeout = 2 * time.Second

// ReadinessCheck reports whether a dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	checks map[string]ReadinessCheck
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. The database is always part of readiness.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	s := &Server{
		db:     db,
		checks: map[string]ReadinessCheck{},
		logger: logger,
		server: newHTTPServer(host, port, nil),
	}
	s.checks["database"] = func(ctx context.Context) error {
		if s.db == nil {
			return fmt.Errorf("database not configured")
		}
		return s.db.PingContext(ctx)
	}
	return s
}

// AddReadinessCheck registers another dependency for /ready, e.g. the Redis session store.
func (s *Server) AddReadinessCheck(name string, check ReadinessCheck) {
	s.checks[name] = check
}

// RouterHandlers groups the domain handlers mounted by SetupRouter.
type RouterHandlers struct {
	Auth   *sessionHTTP.AuthHandler
	User   *userHTTP.UserHandler
	Ticket *ticketHTTP.TicketHandler
}

// SetupRouter builds the gin engine with every route of the API. Client IPs come
// from X-Forwarded-For only when the peer is listed in TRUSTED_PROXIES.
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers RouterHandlers,
	codec sessionService.TokenCodec,
	metricsProvider *metrics.Provider,
) error {
	router := gin.New()
	if err := router.SetTrustedProxies(parseList(cfg.TrustedProxies)); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsProvider.Namespace()))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	authenticated := []gin.HandlerFunc{sessionHTTP.AuthenticationMiddleware(codec, s.logger)}
	if cfg.RateLimitEnabled {
		authenticated = append(authenticated,
			sessionHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	{
		public := auth.Group("")
		if cfg.RateLimitAuthEnabled {
			public.Use(sessionHTTP.AuthRateLimitMiddleware(
				cfg.RateLimitAuthRequestsPerSec, cfg.RateLimitAuthBurst, s.logger))
		}
		public.POST("/register", handlers.User.RegisterHandler)
		public.POST("/login", handlers.Auth.LoginHandler)
		public.POST("/refresh", handlers.Auth.RefreshHandler)

		private := auth.Group("", authenticated...)
		private.POST("/logout", handlers.Auth.LogoutHandler)
		private.POST("/logout-all", handlers.Auth.LogoutAllHandler)
		private.GET("/sessions", handlers.Auth.ListSessionsHandler)
	}

	users := v1.Group("/users", authenticated...)
	{
		users.GET("/me", handlers.User.MeHandler)
		users.PUT("/me/password", handlers.User.ChangePasswordHandler)
	}

	admin := v1.Group("/admin", authenticated...)
	admin.Use(sessionHTTP.AuthorizationMiddleware(s.logger, string(userDomain.RoleAdmin)))
	{
		admin.GET("/users", handlers.User.ListHandler)
		admin.GET("/users/:id", handlers.User.GetHandler)
		admin.PATCH("/users/:id", handlers.User.UpdateHandler)
		admin.DELETE("/users/:id", handlers.User.DeleteHandler)
	}

	tickets := v1.Group("/tickets", authenticated...)
	{
		tickets.POST("", handlers.Ticket.CreateHandler)
		tickets.GET("", handlers.Ticket.ListHandler)
		tickets.GET("/:id", handlers.Ticket.GetHandler)
		tickets.PATCH("/:id", handlers.Ticket.UpdateHandler)
	}

	s.router = router
	return nil
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ready := true
	components := make(gin.H, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		err := s.checks[name](ctx)
		cancel()

		if err != nil {
			ready = false
			components[name] = "error"
			s.logger.Warn("readiness check failed", slog.String("component", name), slog.Any("error", err))
			continue
		}
		components[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start serves the API until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router
	return serve(s.server, "api", s.logger)
}

// Shutdown drains in-flight API requests, including refresh rotations.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down api server")
	return s.server.Shutdown(ctx)
}

// newHTTPServer applies the timeouts shared by the API and metrics listeners.
func newHTTPServer(host string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// serve blocks on srv. A graceful shutdown is not an error.
func serve(srv *http.Server, name string, logger *slog.Logger) error {
	logger.Info("starting "+name+" server", slog.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s server: %w", name, err)
	}
	return nil
}
