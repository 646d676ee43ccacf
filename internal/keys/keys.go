// Package keys loads the token signing secrets, optionally sealed by a KMS key.
//
// Supported key URIs: gcpkms://, awskms://, azurekeyvault://, hashivault:// and
// base64key:// (local, for development and tests).
package keys

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	apperrors "github.com/allisson/helpdesk/internal/errors"
)

// MinSecretLength is the minimum size of an HS256 signing secret.
const MinSecretLength = 32

// Keeper encrypts and decrypts with a KMS key. *secrets.Keeper implements it.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// TokenSecrets holds the plaintext signing secrets of both token kinds.
type TokenSecrets struct {
	Access  []byte
	Refresh []byte
}

// OpenKeeper opens the keeper for keyURI.
func OpenKeeper(ctx context.Context, keyURI string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// Seal encrypts a plaintext secret and returns it base64 encoded, ready for the
// ACCESS_TOKEN_SECRET or REFRESH_TOKEN_SECRET variables.
func Seal(ctx context.Context, keeper Keeper, plaintext string) (string, error) {
	if len(plaintext) < MinSecretLength {
		return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "secret must be at least %d bytes", MinSecretLength)
	}
	ciphertext, err := keeper.Encrypt(ctx, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("failed to seal secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Unseal decodes and decrypts one sealed secret.
func Unseal(ctx context.Context, keeper Keeper, sealed string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "sealed secret is not valid base64")
	}
	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal secret: %w", err)
	}
	if len(plaintext) < MinSecretLength {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unsealed secret must be at least %d bytes", MinSecretLength)
	}
	return plaintext, nil
}

// LoadTokenSecrets returns the signing secrets. With an empty keyURI the values are
// used as plaintext; otherwise both are unsealed with the KMS key.
func LoadTokenSecrets(ctx context.Context, keyURI, access, refresh string) (*TokenSecrets, error) {
	if keyURI == "" {
		if len(access) < MinSecretLength || len(refresh) < MinSecretLength {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput,
				"token secrets must be at least %d bytes", MinSecretLength)
		}
		return &TokenSecrets{Access: []byte(access), Refresh: []byte(refresh)}, nil
	}

	keeper, err := OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer keeper.Close() //nolint:errcheck

	accessSecret, err := Unseal(ctx, keeper, access)
	if err != nil {
		return nil, fmt.Errorf("access token secret: %w", err)
	}
	refreshSecret, err := Unseal(ctx, keeper, refresh)
	if err != nil {
		return nil, fmt.Errorf("refresh token secret: %w", err)
	}

	return &TokenSecrets{Access: accessSecret, Refresh: refreshSecret}, nil
}
