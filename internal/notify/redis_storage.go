package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisStorage keeps in-app notifications in Redis so they survive
// restarts and are shared across instances. One list per tenant/user
// pair, newest first.
type redisStorage struct {
	client *redis.Client
	maxLen int64
}

// NewRedisStorage creates a Redis-backed notification store.
func NewRedisStorage(client *redis.Client) Storage {
	return &redisStorage{client: client, maxLen: 500}
}

func redisKey(tenantID string, userID uuid.UUID) string {
	return "uidam:notifications:" + tenantID + ":" + userID.String()
}

func (s *redisStorage) Create(ctx context.Context, n Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	key := redisKey(n.TenantID, n.UserID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, s.maxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

func (s *redisStorage) List(ctx context.Context, tenantID string, userID uuid.UUID, limit int) ([]Notification, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := s.client.LRange(ctx, redisKey(tenantID, userID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue // skip corrupt entries rather than failing the list
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *redisStorage) MarkRead(ctx context.Context, tenantID string, userID uuid.UUID, ids ...uuid.UUID) error {
	key := redisKey(tenantID, userID)
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}

	for i, item := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		for _, id := range ids {
			if n.ID == id && !n.Read {
				n.Read = true
				updated, err := json.Marshal(n)
				if err != nil {
					return fmt.Errorf("marshal notification: %w", err)
				}
				if err := s.client.LSet(ctx, key, int64(i), updated).Err(); err != nil {
					return fmt.Errorf("mark notification read: %w", err)
				}
			}
		}
	}
	return nil
}
