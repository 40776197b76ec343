package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenExpired rejects unknown, expired or already-consumed confirmation
// tokens.
var ErrTokenExpired = errors.New("confirmation token expired")

// ConfirmStore holds pending kick lists under single-use tokens so the
// destructive action is confirmed against the exact previewed list.
type ConfirmStore interface {
	Put(ctx context.Context, token string, memberIDs []string) error
	// Take returns and consumes the list, or ErrTokenExpired.
	Take(ctx context.Context, token string) ([]string, error)
}

// RedisConfirmStore is the Redis-backed ConfirmStore; TTL bounds how long a
// preview stays actionable.
type RedisConfirmStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisConfirmStore creates a confirm store with the given token TTL.
func NewRedisConfirmStore(client *redis.Client, ttl time.Duration) *RedisConfirmStore {
	return &RedisConfirmStore{client: client, ttl: ttl}
}

func confirmKey(token string) string { return "confirm:kick:" + token }

// Put stores the previewed member list under token.
func (s *RedisConfirmStore) Put(ctx context.Context, token string, memberIDs []string) error {
	raw, err := json.Marshal(memberIDs)
	if err != nil {
		return fmt.Errorf("marshal pending kicks: %w", err)
	}
	return s.client.Set(ctx, confirmKey(token), raw, s.ttl).Err()
}

// Take consumes the token and returns the member list.
func (s *RedisConfirmStore) Take(ctx context.Context, token string) ([]string, error) {
	raw, err := s.client.GetDel(ctx, confirmKey(token)).Result()
	if err == redis.Nil {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("take confirmation token: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal pending kicks: %w", err)
	}
	return ids, nil
}
