package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"costmanager/internal/activity"
	"costmanager/internal/amqp"
	"costmanager/internal/config"
	apphttp "costmanager/internal/http"
	applog "costmanager/internal/log"
	"costmanager/internal/logsink"
	"costmanager/internal/report"
	"costmanager/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting costmanager")

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
	logger.Info("Store initialized", "backend", cfg.DataBackend)

	// Pick the activity log transport. The channel pipeline persists records
	// in-process; the amqp emitter hands them to the sink worker instead.
	var (
		emitter    activity.Emitter
		pipeline   *logsink.Pipeline
		amqpClient *amqp.Client
	)
	switch cfg.LogPipeline {
	case config.PipelineAMQP:
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		emitter = amqp.NewEmitter(amqpClient, logger)
		logger.Info("Activity log pipeline initialized", "pipeline", cfg.LogPipeline, "queue", cfg.AMQPQueue)
	default:
		sink := logsink.NewSink(repo, logger)
		pipeline = logsink.NewPipeline(sink, cfg.LogBufferSize, logger)
		emitter = pipeline
		logger.Info("Activity log pipeline initialized", "pipeline", cfg.LogPipeline, "buffer", cfg.LogBufferSize)
	}

	recorder := activity.NewRecorder(logger, emitter)
	reports := report.NewService(repo)

	srv := apphttp.NewServer(":"+cfg.Port, repo, reports, recorder, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Server first so no handler emits into a closed pipeline.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if pipeline != nil {
			_ = pipeline.Close()
		}
		cancel()
	}()

	logger.Info("Starting HTTP server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
