package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the identity contained in a JWT.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Tokens signs and verifies HS256 tokens issued by the upstream auth service.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens requires a secret in production and falls back to a fixed dev
// secret elsewhere.
func NewTokens(secret string, env string) (*Tokens, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if env == "production" {
			return nil, fmt.Errorf("%w: JWT_SECRET required in production", ErrMissingSecret)
		}
		secret = "dev-secret"
	}
	return &Tokens{secret: []byte(secret), now: time.Now}, nil
}

// Sign issues a token for sub valid for ttl.
func (t *Tokens) Sign(sub string, ttl time.Duration) (string, error) {
	if sub == "" {
		return "", errors.New("sub is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := t.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses token and returns its claims.
func (t *Tokens) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
