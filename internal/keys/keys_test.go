package keys

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/helpdesk/internal/errors"
)

func localKeyURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func openLocalKeeper(t *testing.T, uri string) Keeper {
	t.Helper()
	keeper, err := OpenKeeper(context.Background(), uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = keeper.Close() })
	return keeper
}

func TestOpenKeeper_InvalidURI(t *testing.T) {
	keeper, err := OpenKeeper(context.Background(), "invalid://uri")
	assert.Error(t, err)
	assert.Nil(t, keeper)
	assert.Contains(t, err.Error(), "failed to open KMS keeper")
}

func TestSealUnseal_RoundTrip(t *testing.T) {
	ctx := context.Background()
	keeper := openLocalKeeper(t, localKeyURI(t))
	secret := strings.Repeat("s", 48)

	sealed, err := Seal(ctx, keeper, secret)
	require.NoError(t, err)
	assert.NotContains(t, sealed, secret)

	plaintext, err := Unseal(ctx, keeper, sealed)
	require.NoError(t, err)
	assert.Equal(t, secret, string(plaintext))
}

func TestSeal_ShortSecret(t *testing.T) {
	keeper := openLocalKeeper(t, localKeyURI(t))

	_, err := Seal(context.Background(), keeper, "short")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUnseal_Errors(t *testing.T) {
	ctx := context.Background()
	keeper := openLocalKeeper(t, localKeyURI(t))

	t.Run("invalid base64", func(t *testing.T) {
		_, err := Unseal(ctx, keeper, "%%%")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := openLocalKeeper(t, localKeyURI(t))
		sealed, err := Seal(ctx, other, strings.Repeat("k", 32))
		require.NoError(t, err)

		_, err = Unseal(ctx, keeper, sealed)
		assert.Error(t, err)
	})

	t.Run("short plaintext", func(t *testing.T) {
		ciphertext, err := keeper.Encrypt(ctx, []byte("tiny"))
		require.NoError(t, err)

		_, err = Unseal(ctx, keeper, base64.StdEncoding.EncodeToString(ciphertext))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestLoadTokenSecrets_Plaintext(t *testing.T) {
	access := strings.Repeat("a", MinSecretLength)
	refresh := strings.Repeat("r", MinSecretLength)

	secrets, err := LoadTokenSecrets(context.Background(), "", access, refresh)
	require.NoError(t, err)
	assert.Equal(t, []byte(access), secrets.Access)
	assert.Equal(t, []byte(refresh), secrets.Refresh)
}

func TestLoadTokenSecrets_PlaintextTooShort(t *testing.T) {
	tests := []struct {
		name    string
		access  string
		refresh string
	}{
		{"short access", "short-a", strings.Repeat("r", MinSecretLength)},
		{"short refresh", strings.Repeat("a", MinSecretLength), "short-r"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secrets, err := LoadTokenSecrets(context.Background(), "", tt.access, tt.refresh)
			assert.Nil(t, secrets)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestLoadTokenSecrets_Sealed(t *testing.T) {
	ctx := context.Background()
	uri := localKeyURI(t)
	keeper := openLocalKeeper(t, uri)
	accessSecret := strings.Repeat("a", 32)
	refreshSecret := strings.Repeat("r", 32)

	sealedAccess, err := Seal(ctx, keeper, accessSecret)
	require.NoError(t, err)
	sealedRefresh, err := Seal(ctx, keeper, refreshSecret)
	require.NoError(t, err)

	secrets, err := LoadTokenSecrets(ctx, uri, sealedAccess, sealedRefresh)
	require.NoError(t, err)
	assert.Equal(t, accessSecret, string(secrets.Access))
	assert.Equal(t, refreshSecret, string(secrets.Refresh))
}

func TestLoadTokenSecrets_SealedRefreshInvalid(t *testing.T) {
	ctx := context.Background()
	uri := localKeyURI(t)
	keeper := openLocalKeeper(t, uri)

	sealedAccess, err := Seal(ctx, keeper, strings.Repeat("a", 32))
	require.NoError(t, err)

	_, err = LoadTokenSecrets(ctx, uri, sealedAccess, "not-base64!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh token secret")
}
