package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
)

func TestCreatePoll(t *testing.T) {
	repo := &fakePollRepo{}
	svc := NewPollService(repo)
	creator := uuid.New()

	poll, err := svc.Create(context.Background(), ports.CreatePollInput{
		CreatorID: creator,
		Question:  " Best fruit? ",
		Options:   []string{"Apple", "", "  ", " Banana "},
	})
	require.NoError(t, err)
	require.Len(t, repo.saved, 1)

	assert.Equal(t, "Best fruit?", poll.Question)
	assert.Equal(t, creator, poll.CreatorID)
	assert.False(t, poll.CreatedAt.IsZero())
	require.Len(t, poll.Options, 2)
	assert.Equal(t, "Apple", poll.Options[0].Text)
	assert.Equal(t, "Banana", poll.Options[1].Text)
	for i, opt := range poll.Options {
		assert.Equal(t, i, opt.Position)
		assert.Equal(t, poll.ID, opt.PollID)
		assert.NotEqual(t, uuid.Nil, opt.ID)
	}
}

func TestCreatePoll_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input ports.CreatePollInput
		want  error
	}{
		{"no options", ports.CreatePollInput{Question: "Q"}, domain.ErrInsufficientOptions},
		{"one option", ports.CreatePollInput{Question: "Q", Options: []string{"A"}}, domain.ErrInsufficientOptions},
		{"blank padding", ports.CreatePollInput{Question: "Q", Options: []string{"A", "", " "}}, domain.ErrInsufficientOptions},
		{"blank question", ports.CreatePollInput{Question: "  ", Options: []string{"A", "B"}}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePollRepo{}
			_, err := NewPollService(repo).Create(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, repo.saved)
		})
	}
}

func TestListPolls_Paging(t *testing.T) {
	tests := []struct {
		name       string
		input      ports.ListPollsInput
		wantLimit  int
		wantOffset int
	}{
		{"defaults", ports.ListPollsInput{}, DefaultPageLimit, 0},
		{"negative offset", ports.ListPollsInput{Offset: -3, Limit: 5}, 5, 0},
		{"capped limit", ports.ListPollsInput{Offset: 20, Limit: 1000}, MaxPageLimit, 20},
		{"negative limit", ports.ListPollsInput{Limit: -1}, DefaultPageLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePollRepo{}
			polls, err := NewPollService(repo).ListPolls(context.Background(), tt.input)
			require.NoError(t, err)
			assert.NotNil(t, polls)
			require.Len(t, repo.listCalls, 1)
			assert.Equal(t, [2]int{tt.wantLimit, tt.wantOffset}, repo.listCalls[0])
		})
	}
}
