package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/app"
	"github.com/project-tktt/vacancy-hub/internal/config"
	"github.com/project-tktt/vacancy-hub/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting vacancy worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName+"-worker", cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logger.Fatal("telemetry init failed", zap.Error(err))
	}

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer c.Close()
	if c.Consumer == nil {
		logger.Fatal("the worker needs REDIS_ADDR")
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.NewWorker(c).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("worker error", zap.Error(err))
		}
	}()

	// The scheduler lives here too so a deployment without the API still
	// refreshes dictionaries and cleans up
	sched, err := app.NewScheduler(c)
	if err != nil {
		logger.Fatal("scheduler setup failed", zap.Error(err))
	}
	sched.Start(ctx)

	<-sigChan
	logger.Info("shutdown signal received, stopping")
	cancel()
	sched.Stop()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("graceful shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("shutdown timeout, forcing exit")
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("telemetry shutdown", zap.Error(err))
	}
}
