package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/common/dedup"
)

// Consumer consumes jobs from the Redis priority queues
type Consumer struct {
	client      *redis.Client
	highQueue   string
	normalQueue string
	timeout     time.Duration
	dedup       *dedup.Deduplicator
	logger      *zap.Logger
}

// NewConsumer creates a new queue consumer
func NewConsumer(client *redis.Client, highQueue, normalQueue string, timeout time.Duration, dd *dedup.Deduplicator, logger *zap.Logger) *Consumer {
	if highQueue == "" {
		highQueue = "vacancies:jobs:high"
	}
	if normalQueue == "" {
		normalQueue = "vacancies:jobs:normal"
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Consumer{
		client:      client,
		highQueue:   highQueue,
		normalQueue: normalQueue,
		timeout:     timeout,
		dedup:       dd,
		logger:      logger,
	}
}

// Consume blocks until a job is available, high priority first.
// Returns nil, nil if timeout occurs with no job.
func (c *Consumer) Consume(ctx context.Context) (*Job, error) {
	// BRPOP checks the keys in order
	result, err := c.client.BRPop(ctx, c.timeout, c.highQueue, c.normalQueue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("brpop: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Done releases the job's dedupe claim so it can be queued again
func (c *Consumer) Done(ctx context.Context, job *Job) {
	if job.DedupeKey == "" || c.dedup == nil {
		return
	}
	if err := c.dedup.Release(ctx, job.DedupeKey); err != nil {
		c.logger.Warn("release dedupe key", zap.String("key", job.DedupeKey), zap.Error(err))
	}
}
