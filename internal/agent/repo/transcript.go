package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/hr-assistant/server/internal/agent/model"
	errx "github.com/hr-assistant/server/internal/core/error"
	logx "github.com/hr-assistant/server/pkg/logger"
)

type RedisTranscriptRepository struct {
	rdb         redis.Cmdable
	ttl         time.Duration
	maxMessages int
}

// NewRedisTranscriptRepository keeps at most maxMessages per user; 0 keeps all.
func NewRedisTranscriptRepository(rdb redis.Cmdable, ttl time.Duration, maxMessages int) *RedisTranscriptRepository {
	return &RedisTranscriptRepository{rdb: rdb, ttl: ttl, maxMessages: maxMessages}
}

// TranscriptKey is the Redis list holding one user's exchanges.
func TranscriptKey(userEmail string) string {
	return fmt.Sprintf("transcript:%s:messages", strings.ToLower(strings.TrimSpace(userEmail)))
}

func (r *RedisTranscriptRepository) AddMessage(ctx context.Context, userEmail string, message *schema.Message) error {
	b, err := json.Marshal(message)
	if err != nil {
		logx.Error().Err(err).Str("user_email", userEmail).Msg("failed to marshal message")
		return fmt.Errorf("marshal message: %w", err)
	}
	key := TranscriptKey(userEmail)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push message to redis")
		return errx.WrapRedis(err)
	}
	if r.maxMessages > 0 {
		if err := r.rdb.LTrim(ctx, key, -int64(r.maxMessages), -1).Err(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to trim transcript")
			return errx.WrapRedis(err)
		}
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on transcript key")
		}
	}
	return nil
}

func (r *RedisTranscriptRepository) LoadHistory(ctx context.Context, userEmail string) (*model.Transcript, error) {
	key := TranscriptKey(userEmail)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &model.Transcript{UserEmail: userEmail, Messages: []*schema.Message{}}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load transcript from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("user_email", userEmail).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, &m)
	}
	return &model.Transcript{UserEmail: userEmail, Messages: msgs}, nil
}

func (r *RedisTranscriptRepository) ClearHistory(ctx context.Context, userEmail string) error {
	key := TranscriptKey(userEmail)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete transcript from redis")
		return errx.WrapRedis(err)
	}
	return nil
}
