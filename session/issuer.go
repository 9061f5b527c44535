package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/models"
)

// Issuer mints signed session tokens for resolved accounts. It is a pure
// function of account + current time + configuration: nothing is persisted
// and no state is shared, so a single instance serves all requests.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	validity time.Duration
	logger   *zap.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewIssuer creates a session token issuer. The signing secret is process-wide
// configuration; config.Validate rejects an empty one at startup, so an empty
// secret here is a programming error.
func NewIssuer(secret, issuer, audience string, validity time.Duration, logger *zap.Logger) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("session signing secret is empty")
	}
	return &Issuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		validity: validity,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Issue builds the claim set from the account and signs it with HS256.
// The jti claim is a fresh UUID per token, for audit logging only; tokens
// are never tracked server-side.
func (i *Issuer) Issue(user *models.User) (string, error) {
	now := i.now().UTC()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID.String(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	i.logger.Debug("session token issued",
		zap.String("user_id", user.ID.String()),
		zap.String("jti", claims.ID),
		zap.Duration("validity", i.validity))

	return signed, nil
}
