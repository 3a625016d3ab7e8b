package services

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
)

type resultService struct {
	resultRepo ports.PollResultRepository
}

func NewResultService(resultRepo ports.PollResultRepository) ports.ResultService {
	return &resultService{
		resultRepo: resultRepo,
	}
}

// GetResults reports vote counts per option. Entries keep the poll's option
// order regardless of the counts.
func (s *resultService) GetResults(ctx context.Context, pollID uuid.UUID) (*domain.PollResults, error) {
	results, err := s.resultRepo.GetResults(ctx, pollID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, r := range results.Results {
		total += r.VoteCount
	}
	results.TotalVotes = total

	for i := range results.Results {
		percentage := 0.0
		if total > 0 {
			percentage = float64(results.Results[i].VoteCount) / float64(total) * 100
		}
		results.Results[i].Percentage = math.Round(percentage*100) / 100
	}

	if results.Results == nil {
		results.Results = []domain.OptionResult{}
	}
	return results, nil
}
