package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{db: db}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO polls (id, question, creator_id, created_at) VALUES (?, ?, ?, ?)`,
		poll.ID, poll.Question, poll.CreatorID, poll.CreatedAt.UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	for _, opt := range poll.Options {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO poll_options (id, poll_id, text, position) VALUES (?, ?, ?, ?)`,
			opt.ID, opt.PollID, opt.Text, opt.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	var poll domain.Poll
	err := r.db.QueryRowContext(ctx,
		`SELECT id, question, creator_id, created_at FROM polls WHERE id = ?`, id,
	).Scan(&poll.ID, &poll.Question, &poll.CreatorID, &poll.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	options, err := r.fetchOptions(ctx, []uuid.UUID{poll.ID})
	if err != nil {
		return nil, err
	}
	poll.Options = options[poll.ID]

	return &poll, nil
}

func (r *pollRepository) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question, creator_id, created_at
		FROM polls
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	var polls []*domain.Poll
	var ids []uuid.UUID
	for rows.Next() {
		var poll domain.Poll
		if err := rows.Scan(&poll.ID, &poll.Question, &poll.CreatorID, &poll.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, &poll)
		ids = append(ids, poll.ID)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	if len(polls) == 0 {
		return polls, nil
	}

	// The single connection must be released before the next query.
	options, err := r.fetchOptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, poll := range polls {
		poll.Options = options[poll.ID]
	}
	return polls, nil
}

func (r *pollRepository) Delete(ctx context.Context, pollID, requesterID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var creatorID uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT creator_id FROM polls WHERE id = ?`, pollID).Scan(&creatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPollNotFound
		}
		return fmt.Errorf("failed to get poll: %w", err)
	}

	if creatorID != requesterID {
		var isAdmin bool
		err = tx.QueryRowContext(ctx, `SELECT is_admin FROM users WHERE id = ?`, requesterID).Scan(&isAdmin)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check requester: %w", err)
		}
		if !isAdmin {
			return domain.ErrForbidden
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM polls WHERE id = ?`, pollID); err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *pollRepository) fetchOptions(ctx context.Context, pollIDs []uuid.UUID) (map[uuid.UUID][]domain.PollOption, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(pollIDs)), ",")
	args := make([]any, len(pollIDs))
	for i, id := range pollIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, poll_id, text, position
		FROM poll_options
		WHERE poll_id IN (`+placeholders+`)
		ORDER BY poll_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll options: %w", err)
	}
	defer rows.Close()

	options := make(map[uuid.UUID][]domain.PollOption, len(pollIDs))
	for rows.Next() {
		var opt domain.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Position); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options[opt.PollID] = append(options[opt.PollID], opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}
