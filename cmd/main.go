package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-tracker/internal/cache"
	"task-tracker/internal/config"
	"task-tracker/internal/controller"
	"task-tracker/internal/database"
	"task-tracker/internal/queue"
	"task-tracker/internal/routes"
	"task-tracker/internal/worker"
	"task-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Init(".env")
	if err != nil {
		logger.Error(ctx, "Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	store, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Task store not available; exiting", "error", err)
		os.Exit(1)
	}

	// Redis list cache is optional; a failed connection only disables it.
	var (
		taskCache *cache.TaskCache
		listCache controller.ListCache
		inv       worker.Invalidator
	)
	if cfg.CacheEnabled() {
		if rdb := cache.Client(ctx); rdb != nil {
			taskCache = cache.NewTaskCache(rdb, time.Duration(cfg.CacheTTL)*time.Second)
			listCache, inv = taskCache, taskCache
		}
	}

	// Task events are optional as well.
	var events controller.EventPublisher
	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	if cfg.EventsEnabled() {
		queue.EnsureTopic(ctx)
		if w := queue.Producer(ctx); w != nil {
			events = queue.NewPublisher(w)
		}
		go func() {
			defer close(workerDone)
			worker.Run(workerCtx, inv)
		}()
	} else {
		close(workerDone)
	}

	gin.SetMode(gin.ReleaseMode)
	tc := controller.NewTaskController(store, listCache, events)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(tc, cfg.CORSAllowOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort, "store", cfg.StoreDriver,
			"cache", taskCache != nil, "events", events != nil)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}

	stopWorker()
	<-workerDone
	if w := queue.Producer(ctx); w != nil {
		if err := w.Close(); err != nil {
			logger.Error(ctx, "Kafka producer close error", "error", err)
		}
	}
	if rdb := cache.Client(ctx); rdb != nil {
		_ = rdb.Close()
	}
	if err := store.Close(); err != nil {
		logger.Error(ctx, "Store close error", "error", err)
	}
	logger.Info(ctx, "Server stopped")
}
