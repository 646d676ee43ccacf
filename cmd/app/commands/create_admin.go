package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	userUsecase "github.com/allisson/helpdesk/internal/user/usecase"
)

// RunCreateAdmin seeds an approved administrator. When password is empty it is read
// from the first line of iot.Reader.
func RunCreateAdmin(
	ctx context.Context,
	userUseCase userUsecase.UseCase,
	logger *slog.Logger,
	iot IOTuple,
	name, username, email, password string,
) error {
	if password == "" {
		var err error
		password, err = promptPassword(iot)
		if err != nil {
			return err
		}
	}

	user, err := userUseCase.CreateAdmin(ctx, &userUsecase.CreateAdminInput{
		Name:     name,
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	logger.Info("admin created", slog.String("user_id", user.ID.String()), slog.String("username", user.Username))
	_, err = fmt.Fprintf(iot.Writer, "Admin created: %s (%s)\n", user.Username, user.ID)
	return err
}

func promptPassword(iot IOTuple) (string, error) {
	if _, err := fmt.Fprint(iot.Writer, "Password: "); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(iot.Reader).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}
