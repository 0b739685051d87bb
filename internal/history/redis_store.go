package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const historyKeyPrefix = "chat:history:"

// RedisStore keeps chat history as a redis list of JSON-encoded turns,
// one list per session identifier.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func historyKey(sessionKey string) string {
	return historyKeyPrefix + sessionKey
}

func (s *RedisStore) Append(ctx context.Context, sessionKey string, msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal history message: %w", err)
	}
	return s.rdb.RPush(ctx, historyKey(sessionKey), b).Err()
}

func (s *RedisStore) Messages(ctx context.Context, sessionKey string) ([]Message, error) {
	return s.rangeMessages(ctx, sessionKey, 0)
}

func (s *RedisStore) Recent(ctx context.Context, sessionKey string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.rangeMessages(ctx, sessionKey, int64(limit))
}

func (s *RedisStore) rangeMessages(ctx context.Context, sessionKey string, newest int64) ([]Message, error) {
	start := int64(0)
	if newest > 0 {
		start = -newest
	}
	raw, err := s.rdb.LRange(ctx, historyKey(sessionKey), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history %s: %w", sessionKey, err)
	}
	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}
