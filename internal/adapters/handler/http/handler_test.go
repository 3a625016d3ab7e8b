package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapi/internal/adapters/denylist"
	"github.com/vncsmyrnk/pollapi/internal/adapters/password"
	"github.com/vncsmyrnk/pollapi/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/pollapi/internal/adapters/token"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
	"github.com/vncsmyrnk/pollapi/internal/core/services"
)

const testSecret = "handler-test-secret-0123456789abcdef"

type testApp struct {
	Server *httptest.Server
	Users  ports.UserRepository
	Clock  *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testHashParams = password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "poll.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.ApplyMigrations(db))

	clock := &testClock{now: time.Now()}
	tokens, err := token.NewService(token.Config{
		Secret: []byte(testSecret),
		Issuer: "poll-api-test",
		TTL:    30 * time.Minute,
		Now:    clock.Now,
	})
	require.NoError(t, err)

	userRepo := sqlite.NewUserRepository(db)
	authSvc := services.NewAuthService(userRepo, password.NewArgon2Hasher(testHashParams, ""), tokens, denylist.NewMemory())

	router := NewHandler(RouterConfig{
		AuthService:    authSvc,
		AuthHandler:    NewAuthHandler(authSvc),
		UserHandler:    NewUserHandler(services.NewUserService(userRepo)),
		PollHandler:    NewPollHandler(services.NewPollService(sqlite.NewPollRepository(db)), services.NewResultService(sqlite.NewPollResultRepository(db))),
		VoteHandler:    NewVoteHandler(services.NewVoteService(sqlite.NewVoteRepository(db))),
		RequestTimeout: 5 * time.Second,
		HealthCheck:    db.PingContext,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{Server: server, Users: userRepo, Clock: clock}
}

type response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r response) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}

func (app *testApp) do(t *testing.T, method, path, bearer string, body any) response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, app.Server.URL+path, reader)
	require.NoError(t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := app.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{Status: resp.StatusCode, Header: resp.Header, Body: data}
}

// signup registers username and returns a fresh access token.
func (app *testApp) signup(t *testing.T, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "pw-" + username}

	resp := app.do(t, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))

	resp = app.do(t, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

	var tok domain.Token
	resp.decode(t, &tok)
	return tok.AccessToken
}

func (app *testApp) createPoll(t *testing.T, bearer, question string, options ...string) domain.Poll {
	t.Helper()
	resp := app.do(t, http.MethodPost, "/api/polls", bearer, map[string]any{"question": question, "options": options})
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))

	var poll domain.Poll
	resp.decode(t, &poll)
	return poll
}
