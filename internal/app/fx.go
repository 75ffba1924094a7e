package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/api"
	"github.com/project-tktt/vacancy-hub/internal/config"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/module/worker"
	"github.com/project-tktt/vacancy-hub/internal/scheduler"
	"github.com/project-tktt/vacancy-hub/internal/telemetry"
)

// Module provides the configuration, the logger and the Components, and
// starts tracing before anything else
var Module = fx.Options(
	fx.Provide(
		config.Load,
		NewLogger,
		provideComponents,
	),
	fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: logger.Named("fx")}
	}),
	fx.Invoke(startTelemetry),
)

func provideComponents(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			c.Close()
			return nil
		},
	})
	return c, nil
}

func startTelemetry(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) {
	var shutdown telemetry.Shutdown
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
			if err != nil {
				return err
			}
			shutdown = s
			if cfg.Telemetry.OTLPEndpoint != "" {
				logger.Info("tracing enabled", zap.String("endpoint", cfg.Telemetry.OTLPEndpoint))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(ctx)
		},
	})
}

// RunHTTP serves the API on the configured port
func RunHTTP(lc fx.Lifecycle, c *Components) {
	deps := api.Deps{
		Manager:       c.Manager,
		Dictionary:    c.Dictionary,
		Refresher:     c.Refresher,
		Subscriptions: c.Subscriptions,
		ParseLogs:     c.Stores.ParseLogs,
		Logger:        c.Logger,
	}
	if c.Cache != nil {
		deps.Cache = c.Cache
	}
	if c.Publisher != nil {
		deps.Queue = c.Publisher
	}
	srv := api.NewApp(api.NewHandler(deps))
	addr := fmt.Sprintf(":%d", c.Config.App.Port)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Listen(addr); err != nil {
					c.Logger.Error("http server stopped", zap.Error(err))
				}
			}()
			c.Logger.Info("http server listening", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.ShutdownWithContext(ctx)
		},
	})
}

// RunWorker consumes background jobs until the app stops. It does nothing
// without a queue.
func RunWorker(lc fx.Lifecycle, c *Components) {
	if c.Consumer == nil {
		c.Logger.Warn("REDIS_ADDR not set, background worker disabled")
		return
	}
	w := NewWorker(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					c.Logger.Error("worker stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stop context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stop.Done():
				return stop.Err()
			}
		},
	})
}

// NewWorker builds the job worker over the components' queue
func NewWorker(c *Components) *worker.Worker {
	return worker.NewWorker(c.Consumer, c.Manager, c.Refresher, worker.Config{
		Concurrency: c.Config.Worker.Concurrency,
	}, c.Logger)
}

// RunScheduler registers the periodic tasks
func RunScheduler(lc fx.Lifecycle, c *Components) error {
	s, err := NewScheduler(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			s.Stop()
			return nil
		},
	})
	return nil
}

// NewScheduler registers dictionary refresh, cleanup and, with NATS,
// subscription notifications. Without a queue the dictionary is rebuilt in
// the scheduler itself.
func NewScheduler(c *Components) (*scheduler.Scheduler, error) {
	cfg := c.Config
	s := scheduler.New(c.Logger)

	refresh := scheduler.TaskFunc(func(ctx context.Context) error {
		_, err := c.Refresher.RefreshAll(ctx, domain.AllSources())
		return err
	})
	if c.Publisher != nil {
		refresh = scheduler.DictionaryRefresh(c.Publisher, c.Logger)
	}
	if err := s.Add(scheduler.TaskDictionaryRefresh, cfg.Scheduler.DictionaryRefresh, refresh); err != nil {
		return nil, err
	}

	retention := time.Duration(cfg.App.RetentionDays) * 24 * time.Hour
	if err := s.Add(scheduler.TaskCleanup, cfg.Scheduler.Cleanup, scheduler.Cleanup(c.Manager, retention)); err != nil {
		return nil, err
	}

	if c.Notifier != nil {
		if err := s.Add(scheduler.TaskNotify, cfg.Scheduler.Notify, scheduler.Notify(c.Notifier)); err != nil {
			return nil, err
		}
	}
	return s, nil
}
