package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/helpdesk/internal/app"
)

// Runner is a background loop that stops when its context is cancelled.
type Runner interface {
	Start(ctx context.Context) error
}

// RunWorker starts every runner under one errgroup. The first runner to fail cancels
// the others. Cancellation of ctx is a clean exit.
func RunWorker(ctx context.Context, logger *slog.Logger, runners map[string]Runner) error {
	g, gctx := errgroup.WithContext(ctx)

	for name, runner := range runners {
		g.Go(func() error {
			if err := runner.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker stopped with error", slog.String("runner", name), slog.Any("error", err))
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}

	err := g.Wait()
	logger.Info("worker stopped")
	return err
}

// StartWorker loads configuration and runs the outbox processor and the expired
// session sweeper until SIGINT or SIGTERM.
func StartWorker(ctx context.Context, version string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting worker", slog.String("version", version))
	defer closeContainer(container, logger)

	outboxUseCase, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox processor: %w", err)
	}
	sweeper, err := container.SessionSweeper()
	if err != nil {
		return fmt.Errorf("failed to initialize session sweeper: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return RunWorker(ctx, logger, map[string]Runner{
		"outbox":  outboxUseCase,
		"sweeper": sweeper,
	})
}
