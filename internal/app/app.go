// Package app wires configuration, storage, services and the HTTP router
// into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/pollapi/internal/adapters/denylist"
	handler "github.com/vncsmyrnk/pollapi/internal/adapters/handler/http"
	"github.com/vncsmyrnk/pollapi/internal/adapters/password"
	"github.com/vncsmyrnk/pollapi/internal/adapters/repository"
	"github.com/vncsmyrnk/pollapi/internal/adapters/token"
	"github.com/vncsmyrnk/pollapi/internal/config"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
	"github.com/vncsmyrnk/pollapi/internal/core/services"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "dev"

type Application struct {
	cfg    config.Config
	logger *slog.Logger

	repos   *repository.Repositories
	redis   *redis.Client
	handler http.Handler
}

// New opens the store, applies pending migrations and builds the router.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET is not set, using the development secret")
	}

	app := &Application{cfg: cfg, logger: logger}

	repos, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.repos = repos

	if err := repos.ApplyMigrations(); err != nil {
		_ = app.Close()
		return nil, err
	}

	tokens, err := token.NewService(token.Config{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	revoked, err := app.initDenylist(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	hasher := password.NewArgon2Hasher(password.DefaultParams, cfg.PasswordPepper)
	authService := services.NewAuthService(repos.Users, hasher, tokens, revoked)
	pollService := services.NewPollService(repos.Polls)
	resultService := services.NewResultService(repos.Results)
	voteService := services.NewVoteService(repos.Votes)
	userService := services.NewUserService(repos.Users)

	app.handler = handler.NewHandler(handler.RouterConfig{
		AuthService:    authService,
		AuthHandler:    handler.NewAuthHandler(authService),
		UserHandler:    handler.NewUserHandler(userService),
		PollHandler:    handler.NewPollHandler(pollService, resultService),
		VoteHandler:    handler.NewVoteHandler(voteService),
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		HealthCheck:    app.healthCheck,
	})

	logger.Info("application initialised",
		"database_driver", cfg.DatabaseDriver,
		"denylist", denylistKind(app.redis),
		"token_ttl", cfg.TokenTTL.String(),
	)
	return app, nil
}

func (app *Application) initDenylist(ctx context.Context) (ports.TokenDenylist, error) {
	if app.cfg.RedisURL == "" {
		return denylist.NewMemory(), nil
	}

	client, err := denylist.Connect(ctx, app.cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	app.redis = client
	return denylist.NewRedis(client), nil
}

func (app *Application) healthCheck(ctx context.Context) error {
	if err := app.repos.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if app.redis != nil {
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (app *Application) Handler() http.Handler {
	return app.handler
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests for
// up to the configured grace period.
func (app *Application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              net.JoinHostPort("0.0.0.0", strconv.Itoa(app.cfg.Port)),
		Handler:           app.handler,
		ReadHeaderTimeout: app.cfg.RequestTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.logger.Info("poll api starting", "addr", server.Addr, "version", BuildVersion)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	app.logger.Info("server stopped")
	return nil
}

func (app *Application) Close() error {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.repos != nil {
		errs = append(errs, app.repos.Close())
	}
	return errors.Join(errs...)
}

func denylistKind(client *redis.Client) string {
	if client != nil {
		return "redis"
	}
	return "memory"
}
