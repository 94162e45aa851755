package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"refermatch/internal/app"
	"refermatch/internal/config"
	"refermatch/internal/logger"
	"refermatch/internal/tasks"
	"refermatch/internal/ws"

	"go.uber.org/zap"
)

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

	application := app.New(container)
	go application.Hub.Run()

	// The server embeds a worker so run progress reaches its websocket
	// clients. Tasks come off a shared redis list, so extra runner
	// processes can drain the same queue without duplicating work.
	worker := tasks.NewWorker(container.Queue, container.Runs, container.Batch, container.Sync, container.Notify, zlog)
	worker.Publish = ws.PublishRunStatus(application.Hub)
	go worker.Run(ctx)

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		zlog.Fatal("invalid HTTP port", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Fiber.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zlog.Fatal("server error", zap.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
			zlog.Warn("shutdown error", zap.Error(err))
		}
	}
}
