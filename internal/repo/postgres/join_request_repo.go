package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
)

var (
	ErrJoinRequestNotFound   = errors.New("join request not found")
	ErrJoinRequestNotPending = errors.New("join request is not pending")
)

const joinRequestColumns = `id, user_id, chat_id, username, full_name, status, handled_by, created_at, handled_at`

type JoinRequestRepo struct {
	pool *pgxpool.Pool
}

func NewJoinRequestRepo(pool *pgxpool.Pool) *JoinRequestRepo {
	return &JoinRequestRepo{pool: pool}
}

func (r *JoinRequestRepo) Create(ctx context.Context, userID, chatID int64, username, fullName string) (model.JoinRequest, error) {
	if r.pool == nil {
		return model.JoinRequest{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || chatID == 0 {
		return model.JoinRequest{}, fmt.Errorf("invalid join request payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO join_requests (user_id, chat_id, username, full_name, status)
VALUES ($1, $2, $3, $4, 'pending')
RETURNING `+joinRequestColumns, userID, chatID, username, fullName)

	request, err := scanJoinRequest(row)
	if err != nil {
		return model.JoinRequest{}, fmt.Errorf("create join request: %w", err)
	}

	return request, nil
}

func (r *JoinRequestRepo) GetByID(ctx context.Context, requestID int64) (model.JoinRequest, error) {
	if r.pool == nil {
		return model.JoinRequest{}, fmt.Errorf("postgres pool is nil")
	}
	if requestID <= 0 {
		return model.JoinRequest{}, fmt.Errorf("invalid join request id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+joinRequestColumns+`
FROM join_requests
WHERE id = $1
`, requestID)

	request, err := scanJoinRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.JoinRequest{}, ErrJoinRequestNotFound
		}
		return model.JoinRequest{}, fmt.Errorf("get join request by id: %w", err)
	}

	return request, nil
}

// MarkHandled performs the compare-and-set terminal transition. It is
// called only after the channel gateway call succeeded.
func (r *JoinRequestRepo) MarkHandled(ctx context.Context, requestID, moderatorID int64, status enums.JoinRequestStatus) (model.JoinRequest, error) {
	if r.pool == nil {
		return model.JoinRequest{}, fmt.Errorf("postgres pool is nil")
	}
	if requestID <= 0 {
		return model.JoinRequest{}, fmt.Errorf("invalid join request id")
	}
	if status != enums.JoinRequestApproved && status != enums.JoinRequestRejected {
		return model.JoinRequest{}, fmt.Errorf("invalid terminal status %q", status)
	}

	row := r.pool.QueryRow(ctx, `
UPDATE join_requests
SET
	status = $3,
	handled_by = $2,
	handled_at = NOW()
WHERE id = $1 AND status = 'pending'
RETURNING `+joinRequestColumns, requestID, moderatorID, string(status))

	request, err := scanJoinRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.JoinRequest{}, r.classifyMissing(ctx, requestID)
		}
		return model.JoinRequest{}, fmt.Errorf("mark join request handled: %w", err)
	}

	return request, nil
}

func (r *JoinRequestRepo) classifyMissing(ctx context.Context, requestID int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM join_requests WHERE id = $1)
`, requestID).Scan(&exists); err != nil {
		return fmt.Errorf("check join request existence: %w", err)
	}
	if exists {
		return ErrJoinRequestNotPending
	}
	return ErrJoinRequestNotFound
}

func scanJoinRequest(row pgx.Row) (model.JoinRequest, error) {
	var request model.JoinRequest
	var status string
	err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.ChatID,
		&request.Username,
		&request.FullName,
		&status,
		&request.HandledBy,
		&request.CreatedAt,
		&request.HandledAt,
	)
	if err != nil {
		return model.JoinRequest{}, err
	}
	request.Status = enums.JoinRequestStatus(status)
	return request, nil
}
