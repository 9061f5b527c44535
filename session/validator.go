package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid is returned for a token that fails signature, issuer,
	// or audience checks. Callers surface it as a uniform 401.
	ErrTokenInvalid = errors.New("invalid session token")

	// ErrTokenExpired is returned for a token past its expiry. Distinguished
	// from ErrTokenInvalid for logging; callers still surface a uniform 401.
	ErrTokenExpired = errors.New("session token expired")
)

// Validator verifies session tokens minted by Issuer. It holds only static
// configuration and performs no I/O, so it is safe to share across requests
// without synchronization.
type Validator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewValidator creates a session token validator
func NewValidator(secret, issuer, audience string) (*Validator, error) {
	if secret == "" {
		return nil, fmt.Errorf("session signing secret is empty")
	}
	return &Validator{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Validate checks signature, issuer, audience, and expiry, and returns the
// full claim set on success. Any single failed check rejects the token.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrTokenInvalid, claims.Role)
	}

	return claims, nil
}

// ExpiresIn reports the remaining lifetime of a validated claim set
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}
