// The costmanager-worker consumes serialized activity-log records from the
// AMQP queue and persists them through the log sink. It is only needed when
// the API runs with LOG_PIPELINE=amqp.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"costmanager/internal/amqp"
	"costmanager/internal/config"
	applog "costmanager/internal/log"
	"costmanager/internal/logsink"
	"costmanager/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting costmanager-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	var (
		repo storage.Repository
		err  error
	)
	switch cfg.DataBackend {
	case config.BackendPostgres:
		repo, err = storage.NewPostgresRepository(cfg.PostgresURL)
	default:
		repo, err = storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	}
	if err != nil {
		logger.Error("Failed to initialize store", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	sink := logsink.NewSink(repo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeLogChunks(gctx, func(ctx context.Context, chunk []byte) {
			// Persist never fails the pipeline; bad chunks are dropped.
			_ = sink.Persist(ctx, chunk)
		})
	})

	logger.Info("Consuming activity log records", "queue", cfg.AMQPQueue)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Log consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
