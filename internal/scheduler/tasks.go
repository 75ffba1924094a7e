package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/queue"
)

// Task names
const (
	TaskDictionaryRefresh = "dictionary-refresh"
	TaskCleanup           = "cleanup"
	TaskNotify            = "notify"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload queue.BackgroundJob, opts queue.EnqueueOptions) (bool, error)
}

type Cleaner interface {
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)
}

type Notifier interface {
	NotifyAll(ctx context.Context) (int, error)
}

// DictionaryRefresh queues a refresh of every source dictionary. The worker
// does the scraping so the scheduler never blocks on a site.
func DictionaryRefresh(q Enqueuer, logger *zap.Logger) TaskFunc {
	return func(ctx context.Context) error {
		queued, err := q.Enqueue(ctx, queue.JobRefreshDictionary, queue.BackgroundJob{}, queue.EnqueueOptions{
			Priority:  queue.PriorityNormal,
			DedupeKey: queue.DedupeKey(queue.JobRefreshDictionary, "", ""),
		})
		if err != nil {
			return err
		}
		if !queued {
			logger.Debug("dictionary refresh already queued")
		}
		return nil
	}
}

// Cleanup drops vacancies published more than retention ago
func Cleanup(c Cleaner, retention time.Duration) TaskFunc {
	return func(ctx context.Context) error {
		_, err := c.Cleanup(ctx, retention)
		return err
	}
}

// Notify sends subscription notifications
func Notify(n Notifier) TaskFunc {
	return func(ctx context.Context) error {
		_, err := n.NotifyAll(ctx)
		return err
	}
}
