package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
	"github.com/vncsmyrnk/pollapi/internal/logging"
)

type ctxKey string

const UserIDKey ctxKey = "user_id"

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's id under UserIDKey.
func RequireAuth(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			userID, err := auth.Authenticate(r.Context(), raw)
			if err != nil {
				logging.FromContext(r.Context()).Debug("authentication failed", "err", err)
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = logging.WithContext(ctx, logging.FromContext(ctx).With("user_id", userID.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
