package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetOrCreate registers the user on first interaction. Username and first
// name are refreshed on every call so the moderator card stays current.
func (r *UserRepo) GetOrCreate(ctx context.Context, userID int64, username, firstName string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (user_id, username, first_name)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET
	username = EXCLUDED.username,
	first_name = EXCLUDED.first_name
RETURNING user_id, username, first_name, registered_at, is_banned
`, userID, username, firstName).Scan(
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.RegisteredAt,
		&user.IsBanned,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("get or create user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
SELECT user_id, username, first_name, registered_at, is_banned
FROM users
WHERE user_id = $1
`, userID).Scan(
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.RegisteredAt,
		&user.IsBanned,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) SetBanned(ctx context.Context, userID int64, banned bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET is_banned = $2
WHERE user_id = $1
`, userID, banned)
	if err != nil {
		return fmt.Errorf("set user banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
