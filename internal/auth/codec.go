package auth

import (
	"errors"
	"time"

	"workspace-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failure kinds. Callers branch on these with errors.Is; the
// HTTP layer maps them to status codes (expired → 401, the rest of the
// client-caused kinds → 403, secret-unset → 500).
var (
	ErrSecretUnset       = errors.New("signing secret is not configured")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenTypeMismatch = errors.New("token type mismatch")
)

// Codec signs and verifies access and refresh tokens with independent
// secrets. It holds no storage handles; verification is pure and safe for
// concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrSecretUnset
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	return &Codec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}, nil
}

// IssueAccess signs a short-lived access token for the given identity.
func (c *Codec) IssueAccess(now time.Time, userID, email, role string) (string, error) {
	return c.issue(now, TokenTypeAccess, userID, email, role, c.accessTTL)
}

// IssueRefresh signs a long-lived refresh token. The token string doubles as
// the opaque key persisted by the refresh token store.
func (c *Codec) IssueRefresh(now time.Time, userID, email, role string) (string, error) {
	return c.issue(now, TokenTypeRefresh, userID, email, role, c.refreshTTL)
}

// Verify checks signature, expiry and token type, in that order of failure
// reporting. A missing token_type claim is accepted for either expected type;
// a present-but-wrong one is rejected.
func (c *Codec) Verify(tokenString string, expected TokenType, now time.Time) (Claims, error) {
	secret, err := c.secretFor(expected)
	if err != nil {
		return Claims{}, err
	}

	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30*time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	_, err = parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenMalformed
	}

	if claims.TokenType != "" && claims.TokenType != expected {
		return Claims{}, ErrTokenTypeMismatch
	}
	if claims.UserID == "" {
		return Claims{}, ErrTokenMalformed
	}

	return claims, nil
}

func (c *Codec) secretFor(t TokenType) ([]byte, error) {
	switch t {
	case TokenTypeAccess:
		if len(c.accessSecret) == 0 {
			return nil, ErrSecretUnset
		}
		return c.accessSecret, nil
	case TokenTypeRefresh:
		if len(c.refreshSecret) == 0 {
			return nil, ErrSecretUnset
		}
		return c.refreshSecret, nil
	default:
		return nil, ErrTokenTypeMismatch
	}
}

func (c *Codec) issue(now time.Time, tokenType TokenType, userID, email, role string, ttl time.Duration) (string, error) {
	secret, err := c.secretFor(tokenType)
	if err != nil {
		return "", err
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}
