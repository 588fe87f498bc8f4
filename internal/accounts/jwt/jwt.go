// Package jwt implements the token issuer on top of HS256-signed JWTs.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventup/accounts/internal/accounts"
	"github.com/eventup/accounts/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail parsing or verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Config contains token signing configuration.
type Config struct {
	SecretKey           string
	AccessTokenDuration time.Duration
}

// Issuer signs and verifies access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates a token issuer.
func NewIssuer(cfg Config) *Issuer {
	return &Issuer{
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.AccessTokenDuration,
	}
}

type accessClaims struct {
	Role     domain.Role `json:"role"`
	IsActive bool        `json:"is_active"`
	jwt.RegisteredClaims
}

// Issue signs the claim set into a compact JWT string.
func (i *Issuer) Issue(_ context.Context, claims accounts.TokenClaims) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Role:     claims.Role,
		IsActive: claims.IsActive,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning its subject and role.
func (i *Issuer) ValidateToken(_ context.Context, tokenString string) (string, domain.Role, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	return claims.Subject, claims.Role, nil
}
