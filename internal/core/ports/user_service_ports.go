package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
)

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetAdmin(ctx context.Context, username string, admin bool) error
}
