package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vncsmyrnk/pollapi/internal/app"
	"github.com/vncsmyrnk/pollapi/internal/config"
	"github.com/vncsmyrnk/pollapi/internal/logging"
)

func main() {
	dotenvErr := config.LoadDotEnv()
	cfg := config.LoadConfig()

	logger := logging.New(logging.Config{
		Service: "poll-api",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if dotenvErr != nil {
		logger.Debug("no .env file loaded", "err", dotenvErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise application", "err", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		logger.Error("server exited with error", "err", err)
		application.Close()
		os.Exit(1)
	}
}
