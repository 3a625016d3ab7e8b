package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
)

func TestAuthFlow(t *testing.T) {
	app := setupTestApp(t)
	creds := map[string]string{"username": "dave", "password": "correct horse"}

	// 1. Register
	resp := app.request(t, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := decode[domain.User](t, resp)
	assert.Equal(t, "dave", user.Username)
	assert.False(t, user.IsAdmin)

	// 2. Duplicate usernames are rejected
	resp = app.request(t, http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// 3. Wrong password
	resp = app.request(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "dave", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// 4. Login
	resp = app.request(t, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[domain.Token](t, resp)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, int64(30*60), token.ExpiresIn)

	// 5. The token identifies the caller
	resp = app.request(t, http.MethodGet, "/api/me", token.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[domain.User](t, resp)
	assert.Equal(t, user.ID, me.ID)

	// 6. Logout revokes it in Redis
	resp = app.request(t, http.MethodPost, "/auth/logout", token.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = app.request(t, http.MethodGet, "/api/me", token.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), `error="invalid_token"`)

	// 7. A fresh login still works
	resp = app.request(t, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fresh := decode[domain.Token](t, resp)
	resp = app.request(t, http.MethodGet, "/api/me", fresh.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"me without token", http.MethodGet, "/api/me", ""},
		{"me with garbage token", http.MethodGet, "/api/me", "not-a-jwt"},
		{"create poll without token", http.MethodPost, "/api/polls", ""},
		{"logout without token", http.MethodPost, "/auth/logout", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.request(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
		})
	}
}

func TestHealthz(t *testing.T) {
	app := setupTestApp(t)

	resp := app.request(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
