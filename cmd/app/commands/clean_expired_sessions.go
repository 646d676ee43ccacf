package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	sessionUsecase "github.com/allisson/helpdesk/internal/session/usecase"
)

// RunCleanExpiredSessions deletes sessions past their expiry. With dryRun the
// sessions are only counted.
func RunCleanExpiredSessions(
	ctx context.Context,
	sessionUseCase sessionUsecase.SessionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	dryRun bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	count, err := sessionUseCase.CleanupExpired(ctx, dryRun)
	if err != nil {
		return fmt.Errorf("failed to clean expired sessions: %w", err)
	}

	logger.Info("expired sessions cleaned", slog.Int64("count", count), slog.Bool("dry_run", dryRun))

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"count":   count,
			"dry_run": dryRun,
		})
	}

	if dryRun {
		_, err = fmt.Fprintf(writer, "Found %d expired session(s) that would be deleted\n", count)
	} else {
		_, err = fmt.Fprintf(writer, "Successfully deleted %d expired session(s)\n", count)
	}
	return err
}
