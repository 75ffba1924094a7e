// Package scheduler runs the periodic maintenance tasks on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TaskFunc is one run of a periodic task
type TaskFunc func(ctx context.Context) error

// Scheduler wraps robfig/cron
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu    sync.Mutex
	ctx   context.Context
	tasks map[string]TaskFunc
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cronLogger{logger.Sugar()})),
		logger: logger,
		ctx:    context.Background(),
		tasks:  make(map[string]TaskFunc),
	}
}

// Add registers a task; an empty spec disables it
func (s *Scheduler) Add(name, spec string, fn TaskFunc) error {
	if spec == "" {
		s.logger.Info("task disabled", zap.String("task", name))
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, fn) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.mu.Lock()
	s.tasks[name] = fn
	s.mu.Unlock()
	return nil
}

// Start begins firing tasks; they run with ctx until Stop
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("tasks", len(s.cron.Entries())))
}

// Stop waits for running tasks to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow runs a registered task synchronously
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	fn, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return s.run(name, fn)
}

func (s *Scheduler) run(name string, fn TaskFunc) error {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	started := time.Now()
	err := fn(ctx)
	if err != nil {
		s.logger.Error("task failed", zap.String("task", name), zap.Error(err))
		return err
	}
	s.logger.Info("task done", zap.String("task", name), zap.Duration("took", time.Since(started)))
	return nil
}

// cronLogger routes cron's own logging to zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
