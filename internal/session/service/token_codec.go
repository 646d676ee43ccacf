package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/allisson/helpdesk/internal/errors"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

var errClaimSchema = errors.New("token claims do not match schema")

// TokenCodecConfig configures a jwtTokenCodec. AccessSecret and RefreshSecret must differ
// so a token of one kind never verifies as the other.
type TokenCodecConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// accessClaims is the wire schema of an access token.
type accessClaims struct {
	jwt.RegisteredClaims
	Version   int    `json:"ver"`
	Type      string `json:"typ"`
	SessionID string `json:"sid"`
	Role      string `json:"role"`
}

// Validate is called by the jwt validator after the registered claims pass.
func (c accessClaims) Validate() error {
	if c.Version != sessionDomain.ClaimsVersion || c.Type != string(sessionDomain.AccessToken) {
		return errClaimSchema
	}
	if c.Subject == "" || c.SessionID == "" || c.Role == "" || c.IssuedAt == nil {
		return errClaimSchema
	}
	return nil
}

// refreshClaims is the wire schema of a refresh token. The session id is the jti.
type refreshClaims struct {
	jwt.RegisteredClaims
	Version int    `json:"ver"`
	Type    string `json:"typ"`
	Nonce   string `json:"nonce"`
}

// Validate is called by the jwt validator after the registered claims pass.
func (c refreshClaims) Validate() error {
	if c.Version != sessionDomain.ClaimsVersion || c.Type != string(sessionDomain.RefreshToken) {
		return errClaimSchema
	}
	if c.Subject == "" || c.ID == "" || c.Nonce == "" || c.IssuedAt == nil {
		return errClaimSchema
	}
	return nil
}

// jwtTokenCodec implements TokenCodec with HS256 JWTs.
type jwtTokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	now           func() time.Time
	parser        *jwt.Parser
}

// NewTokenCodec creates a TokenCodec. It fails when the secrets are empty or identical.
func NewTokenCodec(cfg TokenCodecConfig) (TokenCodec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "token secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "access token ttl must be positive")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(now),
	}
	if cfg.Issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		parserOptions = append(parserOptions, jwt.WithAudience(cfg.Audience))
	}

	return &jwtTokenCodec{
		accessSecret:  cfg.AccessSecret,
		refreshSecret: cfg.RefreshSecret,
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		accessTTL:     cfg.AccessTTL,
		now:           now,
		parser:        jwt.NewParser(parserOptions...),
	}, nil
}

// IssueAccessToken signs a short-lived access token.
func (c *jwtTokenCodec) IssueAccessToken(
	principalID, sessionID uuid.UUID,
	role string,
) (string, time.Time, error) {
	issuedAt := c.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(c.accessTTL)

	claims := accessClaims{
		RegisteredClaims: c.registeredClaims(principalID, issuedAt, expiresAt),
		Version:          sessionDomain.ClaimsVersion,
		Type:             string(sessionDomain.AccessToken),
		SessionID:        sessionID.String(),
		Role:             role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign access token")
	}
	return token, expiresAt, nil
}

// IssueRefreshToken signs a refresh token bound to sessionID through the jti claim.
// A random nonce keeps two tokens of the same session distinct even within one second.
func (c *jwtTokenCodec) IssueRefreshToken(
	principalID, sessionID uuid.UUID,
	expiresAt time.Time,
) (string, error) {
	nonce, err := generateNonce()
	if err != nil {
		return "", err
	}

	registered := c.registeredClaims(principalID, c.now().UTC().Truncate(time.Second), expiresAt)
	registered.ID = sessionID.String()

	claims := refreshClaims{
		RegisteredClaims: registered,
		Version:          sessionDomain.ClaimsVersion,
		Type:             string(sessionDomain.RefreshToken),
		Nonce:            nonce,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign refresh token")
	}
	return token, nil
}

// VerifyAccessToken checks signature, issuer, audience, expiry and schema of an access token.
func (c *jwtTokenCodec) VerifyAccessToken(token string) (*sessionDomain.AccessClaims, error) {
	var claims accessClaims
	if _, err := c.parser.ParseWithClaims(token, &claims, c.keyFunc(c.accessSecret)); err != nil {
		return nil, invalidToken(err)
	}

	principalID, err := parseID(claims.Subject)
	if err != nil {
		return nil, invalidToken(err)
	}
	sessionID, err := parseID(claims.SessionID)
	if err != nil {
		return nil, invalidToken(err)
	}

	return &sessionDomain.AccessClaims{
		PrincipalID: principalID,
		SessionID:   sessionID,
		Role:        claims.Role,
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// VerifyRefreshToken checks signature, issuer, audience, expiry and schema of a refresh token.
func (c *jwtTokenCodec) VerifyRefreshToken(token string) (*sessionDomain.RefreshClaims, error) {
	var claims refreshClaims
	if _, err := c.parser.ParseWithClaims(token, &claims, c.keyFunc(c.refreshSecret)); err != nil {
		return nil, invalidToken(err)
	}

	principalID, err := parseID(claims.Subject)
	if err != nil {
		return nil, invalidToken(err)
	}
	sessionID, err := parseID(claims.ID)
	if err != nil {
		return nil, invalidToken(err)
	}

	return &sessionDomain.RefreshClaims{
		PrincipalID: principalID,
		SessionID:   sessionID,
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (c *jwtTokenCodec) registeredClaims(
	principalID uuid.UUID,
	issuedAt, expiresAt time.Time,
) jwt.RegisteredClaims {
	claims := jwt.RegisteredClaims{
		Subject:   principalID.String(),
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	if c.audience != "" {
		claims.Audience = jwt.ClaimStrings{c.audience}
	}
	return claims
}

func (c *jwtTokenCodec) keyFunc(secret []byte) jwt.Keyfunc {
	return func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, errClaimSchema
	}
	return id, nil
}

// invalidToken tags a parse failure with ErrInvalidToken while keeping the jwt
// cause reachable for logging (errors.Is(err, jwt.ErrTokenExpired)).
func invalidToken(cause error) error {
	return apperrors.Join(sessionDomain.ErrInvalidToken, cause)
}

func generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
