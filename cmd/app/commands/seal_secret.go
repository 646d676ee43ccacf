package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/helpdesk/internal/keys"
)

// secretBytes is the entropy of a generated token secret. Its base64 form is 64 characters.
const secretBytes = 48

// RunSealSecret generates a random token secret and prints it sealed with the KMS key.
// The plaintext is never written out.
func RunSealSecret(ctx context.Context, logger *slog.Logger, writer io.Writer, kmsKeyURI string) error {
	keeper, err := keys.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := keeper.Close(); err != nil {
			logger.Error("failed to close KMS keeper", slog.Any("error", err))
		}
	}()

	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	sealed, err := keys.Seal(ctx, keeper, secret)
	if err != nil {
		return err
	}

	logger.Info("token secret sealed")
	_, err = fmt.Fprintln(writer, sealed)
	return err
}
