package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
)

type VoteRepository interface {
	// Upsert records the vote, replacing any earlier vote by the same user on
	// the same poll. It fills in the stored ID and timestamps.
	Upsert(ctx context.Context, vote *domain.Vote) error
	Delete(ctx context.Context, pollID, userID uuid.UUID) error
	GetByUser(ctx context.Context, pollID, userID uuid.UUID) (*domain.Vote, error)
}

type VoteInput struct {
	PollID   uuid.UUID
	OptionID uuid.UUID
	UserID   uuid.UUID
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) (*domain.Vote, error)
	Unvote(ctx context.Context, pollID, userID uuid.UUID) error
	GetUserVote(ctx context.Context, pollID, userID uuid.UUID) (*domain.Vote, error)
}
