package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/vitohq/docintel/internal/audit"
	"github.com/vitohq/docintel/internal/cache"
	"github.com/vitohq/docintel/internal/config"
	"github.com/vitohq/docintel/internal/database"
	"github.com/vitohq/docintel/internal/document"
	"github.com/vitohq/docintel/internal/extraction"
	"github.com/vitohq/docintel/internal/persistence"
	"github.com/vitohq/docintel/internal/queue"
	"github.com/vitohq/docintel/internal/queue/workers"
	"github.com/vitohq/docintel/internal/recognition"
	"github.com/vitohq/docintel/internal/storage"
	"github.com/vitohq/docintel/internal/usage"
	"github.com/vitohq/docintel/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store := persistence.NewCachedStore(
		persistence.NewPostgresStore(db),
		cache.NewCache(rdb),
	)
	objects := storage.NewSupabaseStore(
		cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey,
		cfg.Storage.Bucket, cfg.Upload.MaxBytes,
	)

	recognizer, err := recognition.NewProvider(cfg.Recognition)
	if err != nil {
		slog.Error("recognition provider setup failed", "error", err)
		os.Exit(1)
	}

	dispatcher := webhook.NewDispatcher(db)
	emitter := audit.Multi{
		audit.NewService(db),
		webhook.NewNotifier(dispatcher),
	}

	processor := document.NewProcessor(
		store,
		objects,
		recognizer,
		extraction.NewService(),
		usage.NewMeter(store, cfg.Recognition.CostPerPage),
		emitter,
	)

	srv := queue.NewServer(cfg.Redis, cfg.Worker)
	srv.Register(queue.TypeDocumentProcess, asynq.HandlerFunc(workers.NewDocumentWorker(processor).ProcessTask))

	go func() {
		slog.Info("starting worker",
			"concurrency", cfg.Worker.Concurrency, "max_jobs_per_sec", cfg.Worker.MaxJobsPerSec)
		if err := srv.Run(); err != nil {
			slog.Error("worker error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	srv.Shutdown()
	dispatcher.Close()
	slog.Info("worker stopped")
}
