package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omc-club/registration/internal/models"
)

// ResultTTL is how long completed job results stay queryable.
const ResultTTL = 24 * time.Hour

// ErrResultNotFound means no result exists for the job ID (unknown job, still
// queued, or expired).
var ErrResultNotFound = errors.New("job result not found")

// ResultStore persists bulk job outcomes keyed by job ID.
type ResultStore interface {
	Set(ctx context.Context, result models.BulkResult) error
	Get(ctx context.Context, jobID string) (*models.BulkResult, error)
}

// RedisResults is the Redis-backed ResultStore.
type RedisResults struct {
	client *redis.Client
}

// NewRedisResults creates a result store.
func NewRedisResults(client *redis.Client) *RedisResults {
	return &RedisResults{client: client}
}

func resultKey(jobID string) string { return "job:result:" + jobID }

// Set stores the result with ResultTTL.
func (r *RedisResults) Set(ctx context.Context, result models.BulkResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal job result: %w", err)
	}
	return r.client.Set(ctx, resultKey(result.JobID), raw, ResultTTL).Err()
}

// Get returns the result for jobID, or ErrResultNotFound.
func (r *RedisResults) Get(ctx context.Context, jobID string) (*models.BulkResult, error) {
	raw, err := r.client.Get(ctx, resultKey(jobID)).Result()
	if err == redis.Nil {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job result: %w", err)
	}
	var result models.BulkResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("unmarshal job result: %w", err)
	}
	return &result, nil
}
