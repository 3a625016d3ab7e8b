package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
)

type PollResultRepository interface {
	// GetResults returns per-option vote counts in option order. Percentages
	// and totals are left for the caller.
	GetResults(ctx context.Context, pollID uuid.UUID) (*domain.PollResults, error)
}

type ResultService interface {
	GetResults(ctx context.Context, pollID uuid.UUID) (*domain.PollResults, error)
}
