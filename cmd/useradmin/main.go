package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/vncsmyrnk/pollapi/internal/adapters/repository"
	"github.com/vncsmyrnk/pollapi/internal/config"
	"github.com/vncsmyrnk/pollapi/internal/core/services"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.LoadConfig()

	var promote, demote string
	flag.StringVar(&promote, "promote", "", "Username to grant administrator rights")
	flag.StringVar(&demote, "demote", "", "Username to revoke administrator rights from")
	flag.StringVar(&cfg.DatabaseDriver, "driver", cfg.DatabaseDriver, "Database driver (postgres or sqlite)")
	flag.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection URL")
	flag.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")
	flag.Parse()

	if (promote == "") == (demote == "") {
		flag.Usage()
		log.Fatal("exactly one of -promote or -demote is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repos, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer repos.Close()

	userService := services.NewUserService(repos.Users)

	username, admin := promote, true
	if demote != "" {
		username, admin = demote, false
	}

	if err := userService.SetAdmin(ctx, username, admin); err != nil {
		log.Fatalf("Error updating user: %v", err)
	}
	log.Printf("User %q administrator=%t", username, admin)
}
