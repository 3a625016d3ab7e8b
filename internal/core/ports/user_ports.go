package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
)

type UserRepository interface {
	// Create returns domain.ErrDuplicateUsername when the username is taken.
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetAdmin(ctx context.Context, username string, admin bool) error
}
