package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/queue"
	"github.com/project-tktt/vacancy-hub/internal/scheduler"
)

type fakeQueue struct {
	names []string
	keys  []string
}

func (q *fakeQueue) Enqueue(_ context.Context, name string, _ queue.BackgroundJob, opts queue.EnqueueOptions) (bool, error) {
	q.names = append(q.names, name)
	q.keys = append(q.keys, opts.DedupeKey)
	return len(q.names) == 1, nil
}

type fakeCleaner struct{ maxAge time.Duration }

func (c *fakeCleaner) Cleanup(_ context.Context, maxAge time.Duration) (int, error) {
	c.maxAge = maxAge
	return 3, nil
}

type fakeNotifier struct{ err error }

func (n *fakeNotifier) NotifyAll(context.Context) (int, error) { return 0, n.err }

// ── Scheduler ──

func TestAdd_InvalidSpec(t *testing.T) {
	s := scheduler.New(zap.NewNop())
	if err := s.Add("broken", "every now and then", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestAdd_EmptySpecDisables(t *testing.T) {
	s := scheduler.New(zap.NewNop())
	if err := s.Add("off", "", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.RunNow("off"); err == nil {
		t.Error("a disabled task must not be registered")
	}
}

func TestRunNow(t *testing.T) {
	s := scheduler.New(zap.NewNop())
	ran := 0
	if err := s.Add("count", "@every 1h", func(context.Context) error { ran++; return nil }); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start(context.Background())
	defer s.Stop()

	if err := s.RunNow("count"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if ran != 1 {
		t.Errorf("ran = %d, want 1", ran)
	}
	if err := s.RunNow("missing"); err == nil {
		t.Error("expected an error for an unknown task")
	}
}

// ── Tasks ──

func TestTasks(t *testing.T) {
	ctx := context.Background()

	q := &fakeQueue{}
	refresh := scheduler.DictionaryRefresh(q, zap.NewNop())
	for i := 0; i < 2; i++ {
		if err := refresh(ctx); err != nil {
			t.Fatalf("DictionaryRefresh: %v", err)
		}
	}
	if len(q.names) != 2 || q.names[0] != queue.JobRefreshDictionary || q.keys[0] != q.keys[1] {
		t.Errorf("enqueued %v with keys %v", q.names, q.keys)
	}

	c := &fakeCleaner{}
	if err := scheduler.Cleanup(c, 30*24*time.Hour)(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if c.maxAge != 30*24*time.Hour {
		t.Errorf("maxAge = %v", c.maxAge)
	}

	boom := errors.New("nats down")
	if err := scheduler.Notify(&fakeNotifier{err: boom})(ctx); !errors.Is(err, boom) {
		t.Errorf("Notify = %v", err)
	}
}
