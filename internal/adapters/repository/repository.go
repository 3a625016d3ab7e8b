// Package repository opens the configured store and wires its repositories.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/vncsmyrnk/pollapi/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollapi/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/pollapi/internal/config"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
)

type Repositories struct {
	DB      *sql.DB
	Driver  string
	Users   ports.UserRepository
	Polls   ports.PollRepository
	Votes   ports.VoteRepository
	Results ports.PollResultRepository
}

// Open connects to the store selected by cfg.DatabaseDriver. It does not
// migrate; call ApplyMigrations or use NewMigrator.
func Open(ctx context.Context, cfg config.Config) (*Repositories, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			DB:      db,
			Driver:  cfg.DatabaseDriver,
			Users:   postgres.NewUserRepository(db),
			Polls:   postgres.NewPollRepository(db),
			Votes:   postgres.NewVoteRepository(db),
			Results: postgres.NewPollResultRepository(db),
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			DB:      db,
			Driver:  cfg.DatabaseDriver,
			Users:   sqlite.NewUserRepository(db),
			Polls:   sqlite.NewPollRepository(db),
			Votes:   sqlite.NewVoteRepository(db),
			Results: sqlite.NewPollResultRepository(db),
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown database driver %q", config.ErrInvalidConfig, cfg.DatabaseDriver)
}

func (r *Repositories) NewMigrator() (*migrate.Migrate, error) {
	if r.Driver == config.DriverSQLite {
		return sqlite.NewMigrator(r.DB)
	}
	return postgres.NewMigrator(r.DB)
}

func (r *Repositories) ApplyMigrations() error {
	if r.Driver == config.DriverSQLite {
		return sqlite.ApplyMigrations(r.DB)
	}
	return postgres.ApplyMigrations(r.DB)
}

func (r *Repositories) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
