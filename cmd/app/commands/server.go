package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/helpdesk/internal/app"
)

// listener is the part of the API and metrics servers the run loop drives.
type listener interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer serves the helpdesk API, plus the metrics endpoint when enabled, until
// SIGINT or SIGTERM. Configuration is validated before any connection is opened.
func RunServer(ctx context.Context, version string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("session_store", cfg.SessionStore),
	)
	defer closeContainer(container, logger)

	api, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	listeners := map[string]listener{"api": api}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		listeners["metrics"] = metricsServer
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	failed := make(chan error, len(listeners))
	for name, l := range listeners {
		go func() {
			if err := l.Start(ctx); err != nil {
				failed <- fmt.Errorf("%s server error: %w", name, err)
			}
		}()
	}

	var cause error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case cause = <-failed:
		logger.Error("server error, initiating shutdown", slog.Any("error", cause))
	}

	return errors.Join(cause, shutdownListeners(listeners, cfg.DBConnMaxLifetime))
}

// shutdownListeners stops every listener within timeout and joins their errors.
func shutdownListeners(listeners map[string]listener, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for name, l := range listeners {
		if err := l.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
