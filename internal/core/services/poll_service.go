package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type pollService struct {
	repo ports.PollRepository
}

func NewPollService(repo ports.PollRepository) ports.PollService {
	return &pollService{
		repo: repo,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	pollID := uuid.New()
	now := time.Now().UTC()

	poll := &domain.Poll{
		ID:        pollID,
		Question:  question,
		CreatorID: input.CreatorID,
		CreatedAt: now,
	}

	for _, optText := range input.Options {
		optText = strings.TrimSpace(optText)
		if optText == "" {
			continue
		}
		poll.Options = append(poll.Options, domain.PollOption{
			ID:       uuid.New(),
			PollID:   pollID,
			Text:     optText,
			Position: len(poll.Options),
		})
	}

	if len(poll.Options) < 2 {
		return nil, domain.ErrInsufficientOptions
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *pollService) ListPolls(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	offset := max(input.Offset, 0)
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)

	polls, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if polls == nil {
		polls = []*domain.Poll{}
	}
	return polls, nil
}

func (s *pollService) DeletePoll(ctx context.Context, pollID, requesterID uuid.UUID) error {
	return s.repo.Delete(ctx, pollID, requesterID)
}
