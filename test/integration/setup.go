// Package integration runs the full HTTP stack against PostgreSQL and Redis
// containers.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vncsmyrnk/pollapi/internal/app"
	"github.com/vncsmyrnk/pollapi/internal/config"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"

	_ "github.com/lib/pq"
)

type TestApp struct {
	DB     *sql.DB
	Server *httptest.Server
	Client *http.Client
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}
	return pgContainer, connStr, nil
}

func setupRedisContainer(ctx context.Context) (testcontainers.Container, string, error) {
	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return nil, "", fmt.Errorf("failed to start redis container: %w", err)
	}

	url, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		return nil, "", err
	}
	return redisContainer, url, nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	pgContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	redisContainer, redisURL, err := setupRedisContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := redisContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	cfg := config.Config{
		Env:                 "test",
		LogLevel:            "error",
		DatabaseDriver:      config.DriverPostgres,
		DatabaseURL:         dbURL,
		JWTSecret:           "integration-test-secret-0123456789abcdef",
		JWTIssuer:           "poll-api",
		TokenTTL:            30 * time.Minute,
		RedisURL:            redisURL,
		RequestTimeout:      10 * time.Second,
		ShutdownGracePeriod: time.Second,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	application, err := app.New(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)

	return &TestApp{DB: db, Server: server, Client: server.Client()}
}

func (app *TestApp) request(t *testing.T, method, path, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, app.Server.URL+path, body)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// post is safe to call from goroutines other than the test's own.
func (app *TestApp) post(path, token, body string) (int, error) {
	req, err := http.NewRequest(http.MethodPost, app.Server.URL+path, strings.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// registerAndLogin creates a user through the API and returns its token.
func (app *TestApp) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "password-" + username}

	resp := app.request(t, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.request(t, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[domain.Token](t, resp).AccessToken
}

func (app *TestApp) createPoll(t *testing.T, token, question string, options ...string) domain.Poll {
	t.Helper()
	resp := app.request(t, http.MethodPost, "/api/polls", token, map[string]any{
		"question": question,
		"options":  options,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[domain.Poll](t, resp)
}
