package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MinConns = 0
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	return pool, nil
}

// Migrate creates the schema when it does not exist yet. The bot runs
// against a single database instance and owns its tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
	user_id BIGINT PRIMARY KEY,
	username VARCHAR(255) NOT NULL DEFAULT '',
	first_name VARCHAR(255) NOT NULL DEFAULT '',
	registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	is_banned BOOLEAN NOT NULL DEFAULT FALSE
)`,
		`CREATE TABLE IF NOT EXISTS posts (
	post_id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(user_id),
	post_type VARCHAR(20) NOT NULL,
	content TEXT NOT NULL,
	media_file_id VARCHAR(255) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	rejection_reason TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	reviewed_at TIMESTAMPTZ,
	reviewer_id BIGINT,
	channel_message_id BIGINT
)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_status_created ON posts(status, created_at)`,
		`CREATE TABLE IF NOT EXISTS payments (
	payment_id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(user_id),
	post_type VARCHAR(20) NOT NULL,
	amount NUMERIC(10, 2) NOT NULL,
	currency VARCHAR(10) NOT NULL,
	payment_method VARCHAR(20) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	transaction_id VARCHAR(255) NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_transaction_id
	ON payments(transaction_id) WHERE transaction_id <> ''`,
		`CREATE TABLE IF NOT EXISTS join_requests (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	chat_id BIGINT NOT NULL,
	username VARCHAR(255) NOT NULL DEFAULT '',
	full_name VARCHAR(255) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	handled_by BIGINT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	handled_at TIMESTAMPTZ
)`,
		`CREATE TABLE IF NOT EXISTS moderators (
	moderator_id BIGINT PRIMARY KEY,
	username VARCHAR(255) NOT NULL DEFAULT '',
	added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}
