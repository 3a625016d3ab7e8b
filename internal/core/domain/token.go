package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token is an issued bearer access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	ID        string
	UserID    uuid.UUID
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
