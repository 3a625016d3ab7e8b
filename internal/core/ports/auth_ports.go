package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
)

// PasswordHasher produces and checks salted one-way password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil only when password matches encoded.
	Compare(password, encoded string) error
}

// TokenService issues and verifies signed access tokens.
type TokenService interface {
	Issue(userID uuid.UUID, username string) (*domain.Token, error)
	// Verify returns domain.ErrTokenExpired or domain.ErrTokenInvalid on failure.
	Verify(raw string) (*domain.TokenClaims, error)
}

// TokenDenylist remembers revoked token ids until the token would have
// expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	VerifyCredentials(ctx context.Context, username, password string) (uuid.UUID, error)
	Login(ctx context.Context, username, password string) (*domain.Token, error)
	Authenticate(ctx context.Context, rawToken string) (uuid.UUID, error)
	Logout(ctx context.Context, rawToken string) error
}
