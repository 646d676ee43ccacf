package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	sessionUsecase "github.com/allisson/helpdesk/internal/session/usecase"
)

// RunRevokeSessions ends every session of a user.
func RunRevokeSessions(
	ctx context.Context,
	sessionUseCase sessionUsecase.SessionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	principalID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	revoked, err := sessionUseCase.RevokeAll(ctx, principalID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	logger.Info("sessions revoked", slog.String("user_id", principalID.String()), slog.Int64("count", revoked))

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"user_id": principalID.String(),
			"revoked": revoked,
		})
	}

	_, err = fmt.Fprintf(writer, "Revoked %d session(s) for user %s\n", revoked, principalID)
	return err
}
