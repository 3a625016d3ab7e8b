// Package repotest holds the behaviour every repository driver must share.
// Driver packages run it against their own store.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
)

type Repos struct {
	Users   ports.UserRepository
	Polls   ports.PollRepository
	Votes   ports.VoteRepository
	Results ports.PollResultRepository
}

// Factory returns repositories over an empty store.
type Factory func(t *testing.T) Repos

func Run(t *testing.T, newRepos Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newRepos(t)) })
	t.Run("polls", func(t *testing.T) { testPolls(t, newRepos(t)) })
	t.Run("list", func(t *testing.T) { testList(t, newRepos(t)) })
	t.Run("delete", func(t *testing.T) { testDelete(t, newRepos(t)) })
	t.Run("votes", func(t *testing.T) { testVotes(t, newRepos(t)) })
	t.Run("results", func(t *testing.T) { testResults(t, newRepos(t)) })
	t.Run("concurrent voters", func(t *testing.T) { testConcurrentVoters(t, newRepos(t)) })
	t.Run("concurrent votes by one user", func(t *testing.T) { testConcurrentSameUser(t, newRepos(t)) })
}

func CreateUser(t *testing.T, r Repos, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, PasswordHash: "$argon2id$dummy"}
	require.NoError(t, r.Users.Create(context.Background(), user))
	return user
}

func CreatePoll(t *testing.T, r Repos, creatorID uuid.UUID, question string, options ...string) *domain.Poll {
	t.Helper()
	poll := &domain.Poll{
		ID:        uuid.New(),
		Question:  question,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}
	for i, text := range options {
		poll.Options = append(poll.Options, domain.PollOption{
			ID:       uuid.New(),
			PollID:   poll.ID,
			Text:     text,
			Position: i,
		})
	}
	require.NoError(t, r.Polls.Save(context.Background(), poll))
	return poll
}

func castVote(t *testing.T, r Repos, pollID, optionID, userID uuid.UUID) *domain.Vote {
	t.Helper()
	vote := &domain.Vote{ID: uuid.New(), PollID: pollID, OptionID: optionID, UserID: userID}
	require.NoError(t, r.Votes.Upsert(context.Background(), vote))
	return vote
}

func testUsers(t *testing.T, r Repos) {
	ctx := context.Background()

	alice := CreateUser(t, r, "alice")
	assert.NotEqual(t, uuid.Nil, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	err := r.Users.Create(ctx, &domain.User{Username: "alice", PasswordHash: "other"})
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)

	got, err := r.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "$argon2id$dummy", got.PasswordHash)
	assert.False(t, got.IsAdmin)

	got, err = r.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = r.Users.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = r.Users.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, r.Users.SetAdmin(ctx, "alice", true))
	got, err = r.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	require.ErrorIs(t, r.Users.SetAdmin(ctx, "nobody", true), domain.ErrUserNotFound)
}

func testPolls(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := CreateUser(t, r, "alice")

	poll := CreatePoll(t, r, alice.ID, "Best fruit?", "Apple", "Banana", "Cherry")

	got, err := r.Polls.GetByID(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, "Best fruit?", got.Question)
	assert.Equal(t, alice.ID, got.CreatorID)
	require.Len(t, got.Options, 3)
	for i, opt := range got.Options {
		assert.Equal(t, poll.Options[i].ID, opt.ID)
		assert.Equal(t, poll.Options[i].Text, opt.Text)
		assert.Equal(t, i, opt.Position)
		assert.Equal(t, poll.ID, opt.PollID)
	}

	_, err = r.Polls.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrPollNotFound)

	orphan := &domain.Poll{ID: uuid.New(), Question: "?", CreatorID: uuid.New(), CreatedAt: time.Now().UTC()}
	require.Error(t, r.Polls.Save(ctx, orphan))
}

func testList(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := CreateUser(t, r, "alice")

	polls, err := r.Polls.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, polls)

	var created []*domain.Poll
	for i := range 5 {
		created = append(created, CreatePoll(t, r, alice.ID, fmt.Sprintf("Question %d", i), "Yes", "No"))
		time.Sleep(2 * time.Millisecond)
	}

	page, err := r.Polls.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, created[0].ID, page[0].ID)
	assert.Equal(t, created[1].ID, page[1].ID)
	for _, p := range page {
		require.Len(t, p.Options, 2)
		assert.Equal(t, "Yes", p.Options[0].Text)
		assert.Equal(t, "No", p.Options[1].Text)
	}

	page, err = r.Polls.List(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, created[4].ID, page[0].ID)

	page, err = r.Polls.List(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func testDelete(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := CreateUser(t, r, "alice")
	bob := CreateUser(t, r, "bob")
	admin := CreateUser(t, r, "root")
	require.NoError(t, r.Users.SetAdmin(ctx, "root", true))

	poll := CreatePoll(t, r, alice.ID, "Best fruit?", "Apple", "Banana")
	castVote(t, r, poll.ID, poll.Options[0].ID, bob.ID)

	err := r.Polls.Delete(ctx, poll.ID, bob.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = r.Polls.GetByID(ctx, poll.ID)
	require.NoError(t, err, "forbidden delete must leave the poll intact")

	require.NoError(t, r.Polls.Delete(ctx, poll.ID, alice.ID))

	_, err = r.Polls.GetByID(ctx, poll.ID)
	require.ErrorIs(t, err, domain.ErrPollNotFound)
	_, err = r.Votes.GetByUser(ctx, poll.ID, bob.ID)
	require.ErrorIs(t, err, domain.ErrVoteNotFound)
	_, err = r.Results.GetResults(ctx, poll.ID)
	require.ErrorIs(t, err, domain.ErrPollNotFound)

	err = r.Polls.Delete(ctx, poll.ID, alice.ID)
	require.ErrorIs(t, err, domain.ErrPollNotFound)

	other := CreatePoll(t, r, alice.ID, "Best colour?", "Red", "Blue")
	require.NoError(t, r.Polls.Delete(ctx, other.ID, admin.ID))
}

func testVotes(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := CreateUser(t, r, "alice")
	bob := CreateUser(t, r, "bob")
	poll := CreatePoll(t, r, alice.ID, "Best fruit?", "Apple", "Banana")
	other := CreatePoll(t, r, alice.ID, "Best colour?", "Red", "Blue")

	first := castVote(t, r, poll.ID, poll.Options[0].ID, bob.ID)
	assert.False(t, first.CreatedAt.IsZero())

	got, err := r.Votes.GetByUser(ctx, poll.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, poll.Options[0].ID, got.OptionID)

	second := castVote(t, r, poll.ID, poll.Options[1].ID, bob.ID)
	assert.Equal(t, first.ID, second.ID, "a repeat vote replaces the existing row")

	got, err = r.Votes.GetByUser(ctx, poll.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, poll.Options[1].ID, got.OptionID)

	castVote(t, r, poll.ID, poll.Options[1].ID, bob.ID)
	results, err := r.Results.GetResults(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), results.Results[0].VoteCount)
	assert.Equal(t, int64(1), results.Results[1].VoteCount)

	tests := []struct {
		name     string
		pollID   uuid.UUID
		optionID uuid.UUID
		want     error
	}{
		{"unknown poll", uuid.New(), poll.Options[0].ID, domain.ErrPollNotFound},
		{"unknown option", poll.ID, uuid.New(), domain.ErrOptionNotFound},
		{"option of another poll", poll.ID, other.Options[0].ID, domain.ErrOptionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vote := &domain.Vote{ID: uuid.New(), PollID: tt.pollID, OptionID: tt.optionID, UserID: alice.ID}
			require.ErrorIs(t, r.Votes.Upsert(ctx, vote), tt.want)
		})
	}

	require.NoError(t, r.Votes.Delete(ctx, poll.ID, bob.ID))
	_, err = r.Votes.GetByUser(ctx, poll.ID, bob.ID)
	require.ErrorIs(t, err, domain.ErrVoteNotFound)
	require.ErrorIs(t, r.Votes.Delete(ctx, poll.ID, bob.ID), domain.ErrVoteNotFound)
}

func testResults(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := CreateUser(t, r, "alice")
	poll := CreatePoll(t, r, alice.ID, "Best fruit?", "Apple", "Banana", "Cherry")

	results, err := r.Results.GetResults(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, "Best fruit?", results.Question)
	require.Len(t, results.Results, 3)
	for _, res := range results.Results {
		assert.Zero(t, res.VoteCount)
	}

	votes := []int{0, 2, 2, 1, 2}
	for i, idx := range votes {
		voter := CreateUser(t, r, fmt.Sprintf("voter-%d", i))
		castVote(t, r, poll.ID, poll.Options[idx].ID, voter.ID)
	}

	results, err = r.Results.GetResults(ctx, poll.ID)
	require.NoError(t, err)
	require.Len(t, results.Results, 3)
	assert.Equal(t, poll.ID, results.PollID)

	want := []struct {
		text  string
		count int64
	}{{"Apple", 1}, {"Banana", 1}, {"Cherry", 3}}
	for i, w := range want {
		assert.Equal(t, poll.Options[i].ID, results.Results[i].OptionID)
		assert.Equal(t, w.text, results.Results[i].Text)
		assert.Equal(t, w.count, results.Results[i].VoteCount)
	}

	_, err = r.Results.GetResults(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrPollNotFound)
}

func testConcurrentVoters(t *testing.T, r Repos) {
	const voters = 20
	ctx := context.Background()
	alice := CreateUser(t, r, "alice")
	poll := CreatePoll(t, r, alice.ID, "Best fruit?", "Apple", "Banana")

	users := make([]*domain.User, voters)
	for i := range users {
		users[i] = CreateUser(t, r, fmt.Sprintf("voter-%d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vote := &domain.Vote{ID: uuid.New(), PollID: poll.ID, OptionID: poll.Options[i%2].ID, UserID: u.ID}
			errs <- r.Votes.Upsert(ctx, vote)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	results, err := r.Results.GetResults(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(voters/2), results.Results[0].VoteCount)
	assert.Equal(t, int64(voters/2), results.Results[1].VoteCount)
}

func testConcurrentSameUser(t *testing.T, r Repos) {
	const attempts = 10
	ctx := context.Background()
	alice := CreateUser(t, r, "alice")
	poll := CreatePoll(t, r, alice.ID, "Best fruit?", "Apple", "Banana")

	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vote := &domain.Vote{ID: uuid.New(), PollID: poll.ID, OptionID: poll.Options[i%2].ID, UserID: alice.ID}
			errs <- r.Votes.Upsert(ctx, vote)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	results, err := r.Results.GetResults(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), results.Results[0].VoteCount+results.Results[1].VoteCount)
}
