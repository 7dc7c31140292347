package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
)

const intentPrefix = "intent:"

var ErrIntentNotFound = errors.New("intent not found")

// IntentRecord is the per-actor session: what the bot expects from the
// actor's next message and which entity it relates to.
type IntentRecord struct {
	Intent   enums.Intent
	PostType enums.PostType
	PostID   int64
}

type IntentRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewIntentRepo(client *goredis.Client, ttl time.Duration) *IntentRepo {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &IntentRepo{client: client, ttl: ttl}
}

func (r *IntentRepo) Set(ctx context.Context, userID int64, record IntentRecord) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	fields := map[string]interface{}{
		"intent":    string(record.Intent),
		"post_type": string(record.PostType),
		"post_id":   record.PostID,
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, intentKey(userID), fields)
	pipe.Expire(ctx, intentKey(userID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set intent: %w", err)
	}

	return nil
}

func (r *IntentRepo) Get(ctx context.Context, userID int64) (IntentRecord, error) {
	if r.client == nil {
		return IntentRecord{}, fmt.Errorf("redis client is nil")
	}

	values, err := r.client.HGetAll(ctx, intentKey(userID)).Result()
	if err != nil {
		return IntentRecord{}, fmt.Errorf("get intent hash: %w", err)
	}
	if len(values) == 0 {
		return IntentRecord{}, ErrIntentNotFound
	}

	record := IntentRecord{
		Intent:   enums.Intent(values["intent"]),
		PostType: enums.PostType(values["post_type"]),
	}
	if raw, ok := values["post_id"]; ok && raw != "" {
		postID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			return IntentRecord{}, fmt.Errorf("parse intent post_id: %w", parseErr)
		}
		record.PostID = postID
	}

	return record, nil
}

func (r *IntentRepo) Clear(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := r.client.Del(ctx, intentKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear intent: %w", err)
	}

	return nil
}

func intentKey(userID int64) string {
	return intentPrefix + strconv.FormatInt(userID, 10)
}
