package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/vncsmyrnk/pollapi/internal/adapters/repository"
	"github.com/vncsmyrnk/pollapi/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.LoadConfig()

	var steps int
	flag.StringVar(&cfg.DatabaseDriver, "driver", cfg.DatabaseDriver, "Database driver (postgres or sqlite)")
	flag.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection URL")
	flag.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")
	flag.IntVar(&steps, "steps", 0, "Number of migrations to apply (negative rolls back); 0 means all for up")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: migrate [flags] up|down|version\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repos, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer repos.Close()

	m, err := repos.NewMigrator()
	if err != nil {
		log.Fatal(err)
	}

	switch command {
	case "up":
		if steps != 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		if verr != nil {
			log.Fatal(verr)
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return
	default:
		flag.Usage()
		log.Fatalf("unknown command %q", command)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	version, _, _ := m.Version()
	fmt.Printf("Migrations applied successfully, now at version %d.\n", version)
}
