package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bitsbybeier/backend/models"
)

// Claims is the fixed, typed claim set carried by a session token.
// It replaces lookup-by-string-key claim bags: the issuer produces it once
// and the validator hands it back whole.
type Claims struct {
	jwt.RegisteredClaims
	Email       string          `json:"email"`
	DisplayName string          `json:"name"`
	Role        models.UserRole `json:"role"`
}

// UserID returns the subject claim parsed as the account id
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}
