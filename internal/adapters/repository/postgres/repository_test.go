package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vncsmyrnk/pollapi/internal/adapters/repository/repotest"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, ApplyMigrations(db))
	return db
}

func TestRepositories(t *testing.T) {
	db := setupPostgres(t)

	repotest.Run(t, func(t *testing.T) repotest.Repos {
		_, err := db.Exec(`TRUNCATE votes, poll_options, polls, users`)
		require.NoError(t, err)

		return repotest.Repos{
			Users:   NewUserRepository(db),
			Polls:   NewPollRepository(db),
			Votes:   NewVoteRepository(db),
			Results: NewPollResultRepository(db),
		}
	})
}

func TestMigrationsRoundTrip(t *testing.T) {
	db := setupPostgres(t)

	m, err := NewMigrator(db)
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)

	require.NoError(t, m.Down())
	_, err = db.Exec(`SELECT 1 FROM polls`)
	require.Error(t, err)

	require.NoError(t, ApplyMigrations(db))
	_, err = db.Exec(`SELECT 1 FROM polls`)
	require.NoError(t, err)
}
