package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

var (
	testAccessSecret  = []byte(strings.Repeat("a", 32))
	testRefreshSecret = []byte(strings.Repeat("r", 32))
)

// fakeClock is a settable clock shared by codec instances under test.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func newTestCodec(t *testing.T, clock *fakeClock) TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(TokenCodecConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		Issuer:        "helpdesk",
		Audience:      "helpdesk-api",
		AccessTTL:     15 * time.Minute,
		Now:           clock.Now,
	})
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec(t *testing.T) {
	t.Run("Error_MissingSecret", func(t *testing.T) {
		_, err := NewTokenCodec(TokenCodecConfig{AccessSecret: testAccessSecret, AccessTTL: time.Minute})
		assert.Error(t, err)
	})

	t.Run("Error_SameSecret", func(t *testing.T) {
		_, err := NewTokenCodec(TokenCodecConfig{
			AccessSecret:  testAccessSecret,
			RefreshSecret: testAccessSecret,
			AccessTTL:     time.Minute,
		})
		assert.ErrorContains(t, err, "must differ")
	})

	t.Run("Error_NonPositiveTTL", func(t *testing.T) {
		_, err := NewTokenCodec(TokenCodecConfig{
			AccessSecret:  testAccessSecret,
			RefreshSecret: testRefreshSecret,
		})
		assert.Error(t, err)
	})
}

func TestTokenCodec_AccessToken(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)
	principalID := uuid.Must(uuid.NewV7())
	sessionID := uuid.Must(uuid.NewV7())

	token, expiresAt, err := codec.IssueAccessToken(principalID, sessionID, "ENGINEER")
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(15*time.Minute), expiresAt)
	assert.Len(t, strings.Split(token, "."), 3)

	t.Run("Success_Verify", func(t *testing.T) {
		claims, err := codec.VerifyAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, principalID, claims.PrincipalID)
		assert.Equal(t, sessionID, claims.SessionID)
		assert.Equal(t, "ENGINEER", claims.Role)
		assert.True(t, claims.ExpiresAt.Equal(expiresAt))
	})

	t.Run("Error_Expired", func(t *testing.T) {
		expiredClock := &fakeClock{now: clock.now.Add(16 * time.Minute)}
		_, err := newTestCodec(t, expiredClock).VerifyAccessToken(token)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Error_NotARefreshToken", func(t *testing.T) {
		_, err := codec.VerifyRefreshToken(token)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("Error_Tampered", func(t *testing.T) {
		parts := strings.Split(token, ".")
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]
		_, err := codec.VerifyAccessToken(tampered)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidToken)
	})

	t.Run("Error_Garbage", func(t *testing.T) {
		_, err := codec.VerifyAccessToken("not-a-token")
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidToken)
	})
}

func TestTokenCodec_RefreshToken(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)
	principalID := uuid.Must(uuid.NewV7())
	sessionID := uuid.Must(uuid.NewV7())
	expiresAt := clock.now.Add(30 * 24 * time.Hour)

	token, err := codec.IssueRefreshToken(principalID, sessionID, expiresAt)
	require.NoError(t, err)

	t.Run("Success_Verify", func(t *testing.T) {
		claims, err := codec.VerifyRefreshToken(token)
		require.NoError(t, err)
		assert.Equal(t, principalID, claims.PrincipalID)
		assert.Equal(t, sessionID, claims.SessionID)
		assert.True(t, claims.ExpiresAt.Equal(expiresAt))
	})

	t.Run("Success_SameSessionDistinctTokens", func(t *testing.T) {
		other, err := codec.IssueRefreshToken(principalID, sessionID, expiresAt)
		require.NoError(t, err)
		assert.NotEqual(t, token, other)
	})

	t.Run("Error_ExpiredBeforeAnyLookup", func(t *testing.T) {
		expiredClock := &fakeClock{now: expiresAt.Add(time.Second)}
		_, err := newTestCodec(t, expiredClock).VerifyRefreshToken(token)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Error_NotAnAccessToken", func(t *testing.T) {
		_, err := codec.VerifyAccessToken(token)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidToken)
	})
}

func TestTokenCodec_RejectsForeignTokens(t *testing.T) {
	clock := &fakeClock{now: time.Now().UTC()}
	codec := newTestCodec(t, clock)
	principalID := uuid.Must(uuid.NewV7())

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}
	base := jwt.RegisteredClaims{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Subject:   principalID.String(),
		Issuer:    "helpdesk",
		Audience:  jwt.ClaimStrings{"helpdesk-api"},
		IssuedAt:  jwt.NewNumericDate(clock.now),
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}

	t.Run("Error_MissingVersion", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS256, testRefreshSecret, refreshClaims{
			RegisteredClaims: base,
			Type:             "refresh",
			Nonce:            "n",
		})
		_, err := codec.VerifyRefreshToken(token)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidToken)
	})

	t.Run("Error_WrongKind", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS256, testRefreshSecret, refreshClaims{
			RegisteredClaims: base,
			Version:          sessionDomain.ClaimsVersion,
			Type:             "access",
			Nonce:            "n",
		})
		_, err := codec.VerifyRefreshToken(token)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidToken)
	})

	t.Run("Error_WrongIssuer", func(t *testing.T) {
		claims := base
		claims.Issuer = "someone-else"
		token := sign(jwt.SigningMethodHS256, testRefreshSecret, refreshClaims{
			RegisteredClaims: claims,
			Version:          sessionDomain.ClaimsVersion,
			Type:             "refresh",
			Nonce:            "n",
		})
		_, err := codec.VerifyRefreshToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("Error_NoneAlgorithm", func(t *testing.T) {
		token := sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, refreshClaims{
			RegisteredClaims: base,
			Version:          sessionDomain.ClaimsVersion,
			Type:             "refresh",
			Nonce:            "n",
		})
		_, err := codec.VerifyRefreshToken(token)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidToken)
	})

	t.Run("Error_JTINotUUID", func(t *testing.T) {
		claims := base
		claims.ID = "nonexistent"
		token := sign(jwt.SigningMethodHS256, testRefreshSecret, refreshClaims{
			RegisteredClaims: claims,
			Version:          sessionDomain.ClaimsVersion,
			Type:             "refresh",
			Nonce:            "n",
		})
		_, err := codec.VerifyRefreshToken(token)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidToken)
	})
}
