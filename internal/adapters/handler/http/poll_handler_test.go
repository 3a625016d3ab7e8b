package http

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
)

func TestPollLifecycle(t *testing.T) {
	app := setupTestApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")

	poll := app.createPoll(t, alice, "Best fruit?", "Apple", "Banana")
	require.Len(t, poll.Options, 2)
	assert.Equal(t, "Apple", poll.Options[0].Text)
	assert.Equal(t, "Banana", poll.Options[1].Text)
	banana := poll.Options[1].ID

	resp := app.do(t, http.MethodGet, "/api/polls/"+poll.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var fetched domain.Poll
	resp.decode(t, &fetched)
	assert.Equal(t, "Best fruit?", fetched.Question)
	assert.Equal(t, poll.Options[0].ID, fetched.Options[0].ID)

	resp = app.do(t, http.MethodPost, "/api/polls/"+poll.ID.String()+"/votes", alice, map[string]any{"option_id": banana})
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))

	resp = app.do(t, http.MethodGet, "/api/polls/"+poll.ID.String()+"/results", "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var results domain.PollResults
	resp.decode(t, &results)
	assert.Equal(t, int64(1), results.TotalVotes)
	require.Len(t, results.Results, 2)
	assert.Equal(t, "Apple", results.Results[0].Text)
	assert.Equal(t, int64(0), results.Results[0].VoteCount)
	assert.Equal(t, banana, results.Results[1].OptionID)
	assert.Equal(t, int64(1), results.Results[1].VoteCount)
	assert.InDelta(t, 100.0, results.Results[1].Percentage, 0.001)

	resp = app.do(t, http.MethodDelete, "/api/polls/"+poll.ID.String(), bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = app.do(t, http.MethodGet, "/api/polls/"+poll.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = app.do(t, http.MethodDelete, "/api/polls/"+poll.ID.String(), alice, nil)
	assert.Equal(t, http.StatusNoContent, resp.Status)

	resp = app.do(t, http.MethodGet, "/api/polls/"+poll.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	resp = app.do(t, http.MethodGet, "/api/polls/"+poll.ID.String()+"/results", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	resp = app.do(t, http.MethodDelete, "/api/polls/"+poll.ID.String(), alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestCreatePoll_Validation(t *testing.T) {
	app := setupTestApp(t)
	alice := app.signup(t, "alice")

	tests := []struct {
		name string
		body any
		want int
	}{
		{"single option", map[string]any{"question": "Q?", "options": []string{"Only"}}, http.StatusUnprocessableEntity},
		{"no options", map[string]any{"question": "Q?"}, http.StatusUnprocessableEntity},
		{"blank options do not count", map[string]any{"question": "Q?", "options": []string{"A", " ", ""}}, http.StatusUnprocessableEntity},
		{"missing question", map[string]any{"options": []string{"A", "B"}}, http.StatusBadRequest},
		{"malformed body", `{"question":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.do(t, http.MethodPost, "/api/polls", alice, tt.body)
			assert.Equal(t, tt.want, resp.Status, string(resp.Body))
		})
	}

	poll := app.createPoll(t, alice, "  Trimmed?  ", "A", "  ", "B")
	assert.Equal(t, "Trimmed?", poll.Question)
	require.Len(t, poll.Options, 2)
	assert.Equal(t, 0, poll.Options[0].Position)
	assert.Equal(t, 1, poll.Options[1].Position)
}

func TestListPolls(t *testing.T) {
	app := setupTestApp(t)
	alice := app.signup(t, "alice")

	resp := app.do(t, http.MethodGet, "/api/polls", "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `[]`, string(resp.Body))

	var ids []uuid.UUID
	for i := range 3 {
		ids = append(ids, app.createPoll(t, alice, fmt.Sprintf("Question %d?", i), "Yes", "No").ID)
	}

	list := func(query string) []domain.Poll {
		t.Helper()
		resp := app.do(t, http.MethodGet, "/api/polls"+query, "", nil)
		require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
		var polls []domain.Poll
		resp.decode(t, &polls)
		return polls
	}

	all := list("")
	require.Len(t, all, 3)
	for i, p := range all {
		assert.Equal(t, ids[i], p.ID)
		assert.Len(t, p.Options, 2)
	}

	page := list("?limit=2")
	require.Len(t, page, 2)
	assert.Equal(t, ids[0], page[0].ID)

	page = list("?offset=2&limit=2")
	require.Len(t, page, 1)
	assert.Equal(t, ids[2], page[0].ID)

	page = list("?skip=1&limit=1")
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	assert.Len(t, list("?offset=-5"), 3)
	assert.Len(t, list("?limit=1000"), 3)

	resp = app.do(t, http.MethodGet, "/api/polls?limit=ten", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestGetPoll_BadID(t *testing.T) {
	app := setupTestApp(t)

	resp := app.do(t, http.MethodGet, "/api/polls/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = app.do(t, http.MethodGet, "/api/polls/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestAdminCanDeleteAnyPoll(t *testing.T) {
	app := setupTestApp(t)
	alice := app.signup(t, "alice")
	root := app.signup(t, "root")
	require.NoError(t, app.Users.SetAdmin(context.Background(), "root", true))

	poll := app.createPoll(t, alice, "Best fruit?", "Apple", "Banana")

	resp := app.do(t, http.MethodDelete, "/api/polls/"+poll.ID.String(), root, nil)
	assert.Equal(t, http.StatusNoContent, resp.Status)
}
