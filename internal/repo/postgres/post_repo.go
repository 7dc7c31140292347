package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
)

var (
	ErrPostNotFound = errors.New("post not found")

	// ErrPostNotPending is returned by the compare-and-set transitions when
	// the post exists but already left the pending state.
	ErrPostNotPending = errors.New("post is not pending")
)

const postColumns = `post_id, user_id, post_type, content, media_file_id, status,
	rejection_reason, created_at, reviewed_at, reviewer_id, channel_message_id`

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, userID int64, postType enums.PostType, content, mediaFileID string) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.Post{}, fmt.Errorf("invalid user id")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO posts (user_id, post_type, content, media_file_id, status)
VALUES ($1, $2, $3, $4, 'pending')
RETURNING `+postColumns, userID, string(postType), content, mediaFileID)

	post, err := scanPost(row)
	if err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}

	return post, nil
}

func (r *PostRepo) GetByID(ctx context.Context, postID int64) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 {
		return model.Post{}, fmt.Errorf("invalid post id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE post_id = $1
`, postID)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, ErrPostNotFound
		}
		return model.Post{}, fmt.Errorf("get post by id: %w", err)
	}

	return post, nil
}

// MarkApproved flips a pending post to approved. The WHERE clause is the
// compare-and-set: of two concurrent decisions on the same post exactly one
// sees a row, the other gets ErrPostNotPending.
func (r *PostRepo) MarkApproved(ctx context.Context, postID, moderatorID int64) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 {
		return model.Post{}, fmt.Errorf("invalid post id")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE posts
SET
	status = 'approved',
	reviewed_at = NOW(),
	reviewer_id = $2
WHERE post_id = $1 AND status = 'pending'
RETURNING `+postColumns, postID, moderatorID)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, r.classifyMissing(ctx, postID)
		}
		return model.Post{}, fmt.Errorf("mark post approved: %w", err)
	}

	return post, nil
}

func (r *PostRepo) MarkRejected(ctx context.Context, postID, moderatorID int64, reason string) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 {
		return model.Post{}, fmt.Errorf("invalid post id")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE posts
SET
	status = 'rejected',
	rejection_reason = $3,
	reviewed_at = NOW(),
	reviewer_id = $2
WHERE post_id = $1 AND status = 'pending'
RETURNING `+postColumns, postID, moderatorID, strings.TrimSpace(reason))

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, r.classifyMissing(ctx, postID)
		}
		return model.Post{}, fmt.Errorf("mark post rejected: %w", err)
	}

	return post, nil
}

// UpdateContent replaces content (and media, when supplied) of a pending
// post. Edits of non-pending posts fail with ErrPostNotPending.
func (r *PostRepo) UpdateContent(ctx context.Context, postID int64, content, mediaFileID string) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 {
		return model.Post{}, fmt.Errorf("invalid post id")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE posts
SET
	content = $2,
	media_file_id = COALESCE(NULLIF($3, ''), media_file_id)
WHERE post_id = $1 AND status = 'pending'
RETURNING `+postColumns, postID, content, mediaFileID)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, r.classifyMissing(ctx, postID)
		}
		return model.Post{}, fmt.Errorf("update post content: %w", err)
	}

	return post, nil
}

func (r *PostRepo) SetChannelMessageID(ctx context.Context, postID, messageID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 {
		return fmt.Errorf("invalid post id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE posts
SET channel_message_id = $2
WHERE post_id = $1
`, postID, messageID); err != nil {
		return fmt.Errorf("set channel message id: %w", err)
	}

	return nil
}

// ListPending returns pending posts oldest-first so bulk approval is
// deterministic.
func (r *PostRepo) ListPending(ctx context.Context) ([]model.Post, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE status = 'pending'
ORDER BY created_at ASC, post_id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list pending posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		post, scanErr := scanPost(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan pending post: %w", scanErr)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending posts: %w", err)
	}

	return posts, nil
}

func (r *PostRepo) CountPending(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM posts
WHERE status = 'pending'
`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending posts: %w", err)
	}

	return count, nil
}

type StatusCounts struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

func (r *PostRepo) CountByStatus(ctx context.Context) (StatusCounts, error) {
	if r.pool == nil {
		return StatusCounts{}, fmt.Errorf("postgres pool is nil")
	}

	var counts StatusCounts
	if err := r.pool.QueryRow(ctx, `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'pending'),
	COUNT(*) FILTER (WHERE status = 'approved'),
	COUNT(*) FILTER (WHERE status = 'rejected')
FROM posts
`).Scan(&counts.Total, &counts.Pending, &counts.Approved, &counts.Rejected); err != nil {
		return StatusCounts{}, fmt.Errorf("count posts by status: %w", err)
	}

	return counts, nil
}

func (r *PostRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM posts
WHERE user_id = $1
`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts by user: %w", err)
	}

	return count, nil
}

func (r *PostRepo) classifyMissing(ctx context.Context, postID int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM posts WHERE post_id = $1)
`, postID).Scan(&exists); err != nil {
		return fmt.Errorf("check post existence: %w", err)
	}
	if exists {
		return ErrPostNotPending
	}
	return ErrPostNotFound
}

func scanPost(row pgx.Row) (model.Post, error) {
	var post model.Post
	var postType, status string
	err := row.Scan(
		&post.PostID,
		&post.UserID,
		&postType,
		&post.Content,
		&post.MediaFileID,
		&status,
		&post.RejectionReason,
		&post.CreatedAt,
		&post.ReviewedAt,
		&post.ReviewerID,
		&post.ChannelMessageID,
	)
	if err != nil {
		return model.Post{}, err
	}
	post.Type = enums.PostType(postType)
	post.Status = enums.PostStatus(status)
	return post, nil
}
