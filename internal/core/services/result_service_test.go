package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
)

func TestGetResults_TotalsAndPercentages(t *testing.T) {
	pollID := uuid.New()
	repo := &fakeResultRepo{results: &domain.PollResults{
		PollID:   pollID,
		Question: "Best fruit?",
		Results: []domain.OptionResult{
			{OptionID: uuid.New(), Text: "Apple", VoteCount: 1},
			{OptionID: uuid.New(), Text: "Banana", VoteCount: 2},
			{OptionID: uuid.New(), Text: "Cherry", VoteCount: 0},
		},
	}}

	results, err := NewResultService(repo).GetResults(context.Background(), pollID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), results.TotalVotes)
	assert.Equal(t, "Apple", results.Results[0].Text)
	assert.Equal(t, "Cherry", results.Results[2].Text, "option order is preserved")
	assert.InDelta(t, 33.33, results.Results[0].Percentage, 0.001)
	assert.InDelta(t, 66.67, results.Results[1].Percentage, 0.001)
	assert.Zero(t, results.Results[2].Percentage)
}

func TestGetResults_NoVotes(t *testing.T) {
	repo := &fakeResultRepo{results: &domain.PollResults{
		Results: []domain.OptionResult{{Text: "A"}, {Text: "B"}},
	}}

	results, err := NewResultService(repo).GetResults(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, results.TotalVotes)
	for _, r := range results.Results {
		assert.Zero(t, r.VoteCount)
		assert.Zero(t, r.Percentage)
	}
}

func TestGetResults_NotFound(t *testing.T) {
	_, err := NewResultService(&fakeResultRepo{err: domain.ErrPollNotFound}).GetResults(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrPollNotFound)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
