// Package middleware provides the admin control plane's bearer-token
// auth, adapted from the teacher's internal/router/middleware package:
// the same AuthMiddleware/claims shape, minus the tigerbeetle-generated
// token id and the ledger-specific user claim, since the admin surface
// has no user accounts — only an operator bearer token.
package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims identifies the bearer of an admin token. Subject carries
// the operator name for audit logging; there is no user id because the
// admin API has no user accounts.
type AdminClaims struct {
	jwt.RegisteredClaims
}

// JWTMaker signs and verifies AdminClaims with a single symmetric secret,
// the shape the teacher's middleware package references but never
// itself defines (AuthMiddleware and UserClaims there assume a JWTMaker
// with this signature).
type JWTMaker struct {
	secretKey []byte
}

// minSecretKeySize mirrors common HS256 guidance: a secret shorter than
// this is rejected at construction rather than accepted and silently
// weak.
const minSecretKeySize = 32

// NewJWTMaker constructs a maker from a symmetric secret. It refuses
// secrets shorter than minSecretKeySize.
func NewJWTMaker(secretKey string) (*JWTMaker, error) {
	if len(secretKey) < minSecretKeySize {
		return nil, fmt.Errorf("invalid key size: must be at least %d characters", minSecretKeySize)
	}
	return &JWTMaker{secretKey: []byte(secretKey)}, nil
}

// CreateToken issues a signed token for subject, valid for duration.
func (m *JWTMaker) CreateToken(subject string, duration time.Duration) (string, *AdminClaims, error) {
	claims := &AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, claims, nil
}

// VerifyToken parses and validates tokenStr, returning its claims.
func (m *JWTMaker) VerifyToken(tokenStr string) (*AdminClaims, error) {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secretKey, nil
	}

	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token has expired: %w", err)
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}
