package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Sweeper deletes expired sessions on a fixed interval.
type Sweeper struct {
	sessions SessionUseCase
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper. A nil logger discards output.
func NewSweeper(sessions SessionUseCase, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{sessions: sessions, interval: interval, logger: logger}
}

// Start runs until ctx is cancelled and returns ctx.Err(). A failed sweep is
// logged and retried on the next tick. A non-positive interval is an error.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("invalid sweep interval: %s", s.interval)
	}
	s.logger.Info("starting expired session sweeper", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping expired session sweeper")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass and returns the number of deleted sessions.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	deleted, err := s.sessions.CleanupExpired(ctx, false)
	if err != nil {
		s.logger.Error("failed to delete expired sessions", slog.Any("error", err))
		return 0
	}
	if deleted > 0 {
		s.logger.Info("deleted expired sessions", slog.Int64("count", deleted))
	}
	return deleted
}
