package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Upsert(ctx context.Context, vote *domain.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM polls WHERE id = ?`, vote.PollID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPollNotFound
		}
		return fmt.Errorf("failed to get poll: %w", err)
	}

	var optionPollID uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT poll_id FROM poll_options WHERE id = ?`, vote.OptionID).Scan(&optionPollID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOptionNotFound
		}
		return fmt.Errorf("failed to get option: %w", err)
	}
	if optionPollID != vote.PollID {
		return domain.ErrOptionMismatch
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO votes (id, poll_id, option_id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (poll_id, user_id) DO UPDATE
		SET option_id = excluded.option_id,
		    updated_at = excluded.updated_at`,
		vote.ID, vote.PollID, vote.OptionID, vote.UserID, now, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		}
		return fmt.Errorf("failed to save vote: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at FROM votes WHERE poll_id = ? AND user_id = ?`,
		vote.PollID, vote.UserID,
	).Scan(&vote.ID, &vote.CreatedAt, &vote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to read saved vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, pollID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE poll_id = ? AND user_id = ?`, pollID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	if n == 0 {
		return domain.ErrVoteNotFound
	}
	return nil
}

func (r *voteRepository) GetByUser(ctx context.Context, pollID, userID uuid.UUID) (*domain.Vote, error) {
	var vote domain.Vote
	err := r.db.QueryRowContext(ctx, `
		SELECT id, poll_id, option_id, user_id, created_at, updated_at
		FROM votes
		WHERE poll_id = ? AND user_id = ?`, pollID, userID,
	).Scan(&vote.ID, &vote.PollID, &vote.OptionID, &vote.UserID, &vote.CreatedAt, &vote.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}
