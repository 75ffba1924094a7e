package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/manager"
	"github.com/project-tktt/vacancy-hub/internal/queue"
)

// JobSource yields queued jobs; Consume returns nil, nil on poll timeout
type JobSource interface {
	Consume(ctx context.Context) (*queue.Job, error)
	Done(ctx context.Context, job *queue.Job)
}

type SourceRefresher interface {
	RefreshSource(ctx context.Context, job queue.BackgroundJob) (manager.Outcome, error)
}

type DictionaryRefresher interface {
	Refresh(ctx context.Context, source domain.Source) (int, error)
	RefreshAll(ctx context.Context, sources []domain.Source) (int, error)
}

// Worker processes background jobs from the queue
type Worker struct {
	jobs       JobSource
	sources    SourceRefresher
	dictionary DictionaryRefresher
	logger     *zap.Logger

	concurrency int
}

// Config holds worker configuration
type Config struct {
	Concurrency int
}

// NewWorker creates a new worker
func NewWorker(jobs JobSource, sources SourceRefresher, dict DictionaryRefresher, cfg Config, logger *zap.Logger) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}

	return &Worker{
		jobs:        jobs,
		sources:     sources,
		dictionary:  dict,
		logger:      logger,
		concurrency: cfg.Concurrency,
	}
}

// Run starts the worker pool and blocks until ctx is done
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("starting worker pool", zap.Int("workers", w.concurrency))

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.runSingle(ctx, workerID)
		}(i)
	}

	// Wait for all workers or context cancellation
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (w *Worker) runSingle(ctx context.Context, workerID int) {
	logger := w.logger.With(zap.Int("worker", workerID))
	logger.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker stopping")
			return
		default:
		}

		// BRPOP blocks until a job or the poll timeout, so no CPU spinning
		job, err := w.jobs.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("consume error", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}

		if err := w.Handle(ctx, job); err != nil {
			logger.Warn("job failed", zap.String("job", job.Name), zap.String("id", job.ID), zap.Error(err))
		}
		// the claim is released even when shutdown cut the job short
		w.jobs.Done(context.WithoutCancel(ctx), job)
	}
}

// Handle dispatches one job by name
func (w *Worker) Handle(ctx context.Context, job *queue.Job) error {
	p := job.Payload
	switch job.Name {
	case queue.JobRefreshSource:
		out, err := w.sources.RefreshSource(ctx, p)
		if err != nil {
			return err
		}
		w.logger.Info("source refreshed",
			zap.String("source", string(p.Source)),
			zap.String("query", p.SearchQuery),
			zap.Int("created", out.Created),
			zap.Int("updated", out.Updated),
		)
		return nil

	case queue.JobRefreshDictionary:
		if w.dictionary == nil {
			return fmt.Errorf("no dictionary refresher")
		}
		if p.Source == "" {
			_, err := w.dictionary.RefreshAll(ctx, domain.AllSources())
			return err
		}
		_, err := w.dictionary.Refresh(ctx, p.Source)
		return err
	}
	return fmt.Errorf("unknown job %q", job.Name)
}
