package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
)

type PollRepository interface {
	// Save persists the poll and all of its options atomically.
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Poll, error)
	// Delete removes the poll with its options and votes when requesterID is
	// the creator or an administrator.
	Delete(ctx context.Context, pollID, requesterID uuid.UUID) error
}

type CreatePollInput struct {
	CreatorID uuid.UUID
	Question  string
	Options   []string
}

type ListPollsInput struct {
	Offset int
	Limit  int
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	ListPolls(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
	DeletePoll(ctx context.Context, pollID, requesterID uuid.UUID) error
}
