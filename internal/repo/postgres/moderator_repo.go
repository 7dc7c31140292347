package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
)

var ErrModeratorNotFound = errors.New("moderator not found")

type ModeratorRepo struct {
	pool *pgxpool.Pool
}

func NewModeratorRepo(pool *pgxpool.Pool) *ModeratorRepo {
	return &ModeratorRepo{pool: pool}
}

func (r *ModeratorRepo) Add(ctx context.Context, moderatorID int64, username string) (model.Moderator, error) {
	if r.pool == nil {
		return model.Moderator{}, fmt.Errorf("postgres pool is nil")
	}
	if moderatorID <= 0 {
		return model.Moderator{}, fmt.Errorf("invalid moderator id")
	}

	var moderator model.Moderator
	err := r.pool.QueryRow(ctx, `
INSERT INTO moderators (moderator_id, username)
VALUES ($1, $2)
ON CONFLICT (moderator_id) DO UPDATE SET
	username = EXCLUDED.username
RETURNING moderator_id, username, added_at
`, moderatorID, strings.TrimSpace(username)).Scan(
		&moderator.ModeratorID,
		&moderator.Username,
		&moderator.AddedAt,
	)
	if err != nil {
		return model.Moderator{}, fmt.Errorf("add moderator: %w", err)
	}

	return moderator, nil
}

func (r *ModeratorRepo) Exists(ctx context.Context, moderatorID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM moderators WHERE moderator_id = $1)
`, moderatorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check moderator existence: %w", err)
	}

	return exists, nil
}

func (r *ModeratorRepo) List(ctx context.Context) ([]model.Moderator, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT moderator_id, username, added_at
FROM moderators
ORDER BY added_at ASC, moderator_id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list moderators: %w", err)
	}
	defer rows.Close()

	moderators := make([]model.Moderator, 0)
	for rows.Next() {
		var moderator model.Moderator
		if err := rows.Scan(&moderator.ModeratorID, &moderator.Username, &moderator.AddedAt); err != nil {
			return nil, fmt.Errorf("scan moderator: %w", err)
		}
		moderators = append(moderators, moderator)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderators: %w", err)
	}

	return moderators, nil
}

func (r *ModeratorRepo) UpdateUsername(ctx context.Context, moderatorID int64, username string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if moderatorID <= 0 {
		return fmt.Errorf("invalid moderator id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE moderators
SET username = $2
WHERE moderator_id = $1
`, moderatorID, strings.TrimSpace(username))
	if err != nil {
		return fmt.Errorf("update moderator username: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrModeratorNotFound
	}

	return nil
}

// Remove is kept for the admin surface even though the bot does not expose
// a removal action yet.
func (r *ModeratorRepo) Remove(ctx context.Context, moderatorID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM moderators
WHERE moderator_id = $1
`, moderatorID)
	if err != nil {
		return fmt.Errorf("remove moderator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrModeratorNotFound
	}

	return nil
}
