package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/vacancy-hub/internal/common/dedup"
)

// Publisher pushes jobs to the Redis priority queues
type Publisher struct {
	client      *redis.Client
	highQueue   string
	normalQueue string
	dedup       *dedup.Deduplicator
	dedupeTTL   time.Duration
}

// NewPublisher creates a new queue publisher
func NewPublisher(client *redis.Client, highQueue, normalQueue string, dd *dedup.Deduplicator, dedupeTTL time.Duration) *Publisher {
	if highQueue == "" {
		highQueue = "vacancies:jobs:high"
	}
	if normalQueue == "" {
		normalQueue = "vacancies:jobs:normal"
	}
	return &Publisher{
		client:      client,
		highQueue:   highQueue,
		normalQueue: normalQueue,
		dedup:       dd,
		dedupeTTL:   dedupeTTL,
	}
}

// Enqueue pushes a job. With a dedupe key the job is skipped, and false
// returned, while an earlier job with the same key is still pending.
func (p *Publisher) Enqueue(ctx context.Context, name string, payload BackgroundJob, opts EnqueueOptions) (bool, error) {
	if opts.Priority == "" {
		opts.Priority = PriorityNormal
	}
	if opts.DedupeKey != "" && p.dedup != nil {
		claimed, err := p.dedup.Claim(ctx, opts.DedupeKey, p.dedupeTTL)
		if err != nil {
			return false, fmt.Errorf("claim dedupe key: %w", err)
		}
		if !claimed {
			return false, nil
		}
	}

	job := Job{
		ID:         uuid.NewString(),
		Name:       name,
		Payload:    payload,
		Priority:   opts.Priority,
		DedupeKey:  opts.DedupeKey,
		EnqueuedAt: time.Now(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		p.release(ctx, opts.DedupeKey)
		return false, fmt.Errorf("marshal job: %w", err)
	}

	if err := p.client.LPush(ctx, p.queueFor(opts.Priority), data).Err(); err != nil {
		p.release(ctx, opts.DedupeKey)
		return false, fmt.Errorf("lpush: %w", err)
	}
	return true, nil
}

// QueueLength returns the number of pending jobs in both queues
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	pipe := p.client.Pipeline()
	high := pipe.LLen(ctx, p.highQueue)
	normal := pipe.LLen(ctx, p.normalQueue)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("pipeline exec: %w", err)
	}
	return high.Val() + normal.Val(), nil
}

// release drops a claim whose job never reached the queue, so the next
// request can queue it
func (p *Publisher) release(ctx context.Context, key string) {
	if key == "" || p.dedup == nil {
		return
	}
	_ = p.dedup.Release(context.WithoutCancel(ctx), key)
}

func (p *Publisher) queueFor(priority Priority) string {
	if priority == PriorityHigh {
		return p.highQueue
	}
	return p.normalQueue
}
