package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"refermatch/internal/app"
	"refermatch/internal/config"
	"refermatch/internal/logger"
	"refermatch/internal/tasks"

	"go.uber.org/zap"
)

// runner is a standalone queue drainer for deployments that want matching
// and fanout isolated from the API process. It shares the redis task list
// with the server's embedded worker.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.LogJSON, cfg.App.LogDebug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to build container", zap.Error(err))
	}
	defer func() {
		if err := container.Close(); err != nil {
			zlog.Warn("container close", zap.Error(err))
		}
	}()

	worker := tasks.NewWorker(container.Queue, container.Runs, container.Batch, container.Sync, container.Notify, zlog)
	worker.Run(ctx)
}
