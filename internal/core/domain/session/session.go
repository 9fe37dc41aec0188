package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tokens represents the session token handed out after signup
type Tokens struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Claims represents JWT claims for an account session
type Claims struct {
	AccountID uuid.UUID `json:"account_id"`
	Name      string    `json:"name"`

	jwt.RegisteredClaims
}
