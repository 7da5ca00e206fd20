package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// JobType identifies which handler processes a job
type JobType string

// Job is a unit of background work carried through redis
type Job struct {
	ID         uuid.UUID       `json:"id"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Retries    int             `json:"retries"`
	MaxRetries int             `json:"max_retries"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// JobHandler processes a single job
type JobHandler func(ctx context.Context, job *Job) error

const queueKey = "nexvpn:jobs"

// RedisQueue is a minimal redis-backed job queue: LPUSH to enqueue, BRPOP
// to dequeue. Failed jobs are re-enqueued until MaxRetries is exhausted.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a new redis-backed queue
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

// Enqueue serializes a payload and pushes a job onto the queue
func (q *RedisQueue) Enqueue(ctx context.Context, jobType JobType, payload interface{}, maxRetries int) (uuid.UUID, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    payloadBytes,
		MaxRetries: maxRetries,
		EnqueuedAt: time.Now(),
	}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.LPush(ctx, queueKey, jobBytes).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue job: %w", err)
	}
	return job.ID, nil
}

// Dequeue blocks up to timeout waiting for the next job. Returns nil when
// the timeout elapses with nothing queued.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BRPop(ctx, timeout, queueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	// BRPop returns [key, value]
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// Requeue pushes a failed job back for another attempt
func (q *RedisQueue) Requeue(ctx context.Context, job *Job) error {
	job.Retries++
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, queueKey, jobBytes).Err(); err != nil {
		return fmt.Errorf("failed to requeue job: %w", err)
	}
	return nil
}

// Close closes the underlying redis client
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
