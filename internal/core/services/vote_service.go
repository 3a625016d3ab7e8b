package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
)

type voteService struct {
	voteRepo ports.VoteRepository
}

func NewVoteService(voteRepo ports.VoteRepository) ports.VoteService {
	return &voteService{
		voteRepo: voteRepo,
	}
}

// Vote records the user's choice. A user holds at most one vote per poll; a
// repeated vote replaces the earlier choice.
func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (*domain.Vote, error) {
	vote := &domain.Vote{
		ID:       uuid.New(),
		PollID:   input.PollID,
		OptionID: input.OptionID,
		UserID:   input.UserID,
	}

	if err := s.voteRepo.Upsert(ctx, vote); err != nil {
		return nil, err
	}
	return vote, nil
}

func (s *voteService) Unvote(ctx context.Context, pollID, userID uuid.UUID) error {
	return s.voteRepo.Delete(ctx, pollID, userID)
}

func (s *voteService) GetUserVote(ctx context.Context, pollID, userID uuid.UUID) (*domain.Vote, error) {
	return s.voteRepo.GetByUser(ctx, pollID, userID)
}
