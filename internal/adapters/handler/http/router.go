package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
	"github.com/vncsmyrnk/pollapi/internal/logging"
)

type RouterConfig struct {
	AuthService ports.AuthService
	AuthHandler *AuthHandler
	UserHandler *UserHandler
	PollHandler *PollHandler
	VoteHandler *VoteHandler

	Logger *slog.Logger
	// RequestTimeout bounds every request; zero disables it.
	RequestTimeout time.Duration
	// HealthCheck is called by /healthz; nil reports healthy.
	HealthCheck func(ctx context.Context) error
}

func NewHandler(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(logging.HTTPMiddleware(logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/healthz", healthz(cfg.HealthCheck))

	requireAuth := RequireAuth(cfg.AuthService)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.With(requireAuth).Post("/logout", cfg.AuthHandler.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.With(requireAuth).Get("/me", cfg.UserHandler.GetMe)

		r.Route("/polls", func(r chi.Router) {
			r.Get("/", cfg.PollHandler.ListPolls)
			r.With(requireAuth).Post("/", cfg.PollHandler.CreatePoll)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.PollHandler.GetPoll)
				r.Get("/results", cfg.PollHandler.GetResults)

				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Delete("/", cfg.PollHandler.DeletePoll)
					r.Post("/votes", cfg.VoteHandler.VoteOnPoll)
					r.Delete("/votes", cfg.VoteHandler.Unvote)
					r.Get("/my-vote", cfg.VoteHandler.GetMyVote)
				})
			})
		})
	})

	return r
}

func healthz(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				logging.FromContext(r.Context()).Error("health check failed", "err", err)
				writeMessage(w, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
