package app_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/app"
	"github.com/project-tktt/vacancy-hub/internal/config"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/scheduler"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{StaleAfter: 12 * time.Hour, RetentionDays: 30, DefaultLimit: 10},
		Crawler: config.CrawlerConfig{
			MaxPages: 1,
			BaseURLs: map[string]string{"hh.ru": "https://api.hh.ru", "unknown.md": "https://unknown.md"},
		},
		Worker: config.WorkerConfig{Concurrency: 1},
		Scheduler: config.SchedulerConfig{
			DictionaryRefresh: "@every 24h",
			Cleanup:           "@daily",
			Notify:            "@every 15m",
		},
	}
}

// ── Build ──

func TestBuild_InMemory(t *testing.T) {
	c, err := app.Build(context.Background(), memoryConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer c.Close()

	if c.Redis != nil || c.Cache != nil || c.Publisher != nil || c.Consumer != nil {
		t.Error("redis components built without REDIS_ADDR")
	}
	if c.Notifier != nil {
		t.Error("notifier built without NATS_URL")
	}
	if c.Manager == nil || c.Dictionary == nil || c.Refresher == nil || c.Subscriptions == nil {
		t.Fatal("core services missing")
	}

	got := map[domain.Source]bool{}
	for _, p := range c.Parsers {
		got[p.Source()] = true
	}
	for _, src := range domain.AllSources() {
		if !got[src] {
			t.Errorf("no parser for %s", src)
		}
	}
}

func TestBuild_RedisUnreachable(t *testing.T) {
	cfg := memoryConfig()
	cfg.Redis.Addr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := app.Build(ctx, cfg, zap.NewNop()); err == nil {
		t.Fatal("Build() should fail when redis is unreachable")
	}
}

// ── Scheduler ──

func TestNewScheduler(t *testing.T) {
	c, err := app.Build(context.Background(), memoryConfig(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	s, err := app.NewScheduler(c)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if err := s.RunNow(scheduler.TaskCleanup); err != nil {
		t.Errorf("cleanup: %v", err)
	}
	if err := s.RunNow(scheduler.TaskNotify); err == nil {
		t.Error("notify should not be registered without NATS")
	}
}

func TestNewScheduler_BadSpec(t *testing.T) {
	cfg := memoryConfig()
	cfg.Scheduler.Cleanup = "every now and then"

	c, err := app.Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := app.NewScheduler(c); err == nil {
		t.Error("NewScheduler() should reject an invalid cron spec")
	}
}
