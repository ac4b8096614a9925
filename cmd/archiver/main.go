package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/user/rtc-event-log/internal/adapter/repository/postgres"
	redisrepo "github.com/user/rtc-event-log/internal/adapter/repository/redis"
	"github.com/user/rtc-event-log/internal/pkg/config"
	"github.com/user/rtc-event-log/internal/pkg/logger"
	"github.com/user/rtc-event-log/internal/usecase"
)

const (
	consumerGroup    = "record-archivers"
	archiveInterval  = 1 * time.Second
	sinkWriteRetries = 3
	sinkRetryBackoff = 500 * time.Millisecond
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting archiver worker")

	// Create a context that we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stopChan
		log.Info("shutdown signal received, stopping archiver...")
		cancel()
	}()

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.RedisAddr)
	if err != nil {
		log.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	// Create a unique consumer name for this instance
	consumerName, err := os.Hostname()
	if err != nil {
		log.Warn("could not get hostname for consumer name, using default", "error", err)
		consumerName = "archiver-default"
	}

	// Instantiate repositories
	recordBuffer, err := redisrepo.NewRecordRepository(redisClient, log, consumerGroup, cfg.RedisDLQStream, nil, nil)
	if err != nil {
		log.Error("failed to create redis record repository", "error", err)
		os.Exit(1)
	}
	recordSink := postgres.NewRecordRepository(db, log)

	// Load the optional persist filter
	filter, err := usecase.LoadPersistFilter(cfg.PersistFilterFile)
	if err != nil {
		log.Error("failed to load persist filter", "file", cfg.PersistFilterFile, "error", err)
		os.Exit(1)
	}
	if filter != nil {
		log.Info("persist filter loaded", "file", cfg.PersistFilterFile)
	}

	// Instantiate the use case
	archiveUseCase := usecase.NewArchiveRecordsUseCase(recordBuffer, recordSink, filter, log, consumerGroup, consumerName, sinkWriteRetries, sinkRetryBackoff)

	// Start the archive processing loop
	ticker := time.NewTicker(archiveInterval)
	defer ticker.Stop()

	log.Info("archiver worker started, processing records...", "group", consumerGroup, "consumer", consumerName)

Loop:
	for {
		select {
		case <-ticker.C:
			archivedCount, err := archiveUseCase.ProcessBatch(ctx)
			if err != nil {
				log.Error("error processing batch", "error", err)
			}
			if archivedCount > 0 {
				log.Debug("archived batch", "count", archivedCount)
			}
		case <-ctx.Done():
			log.Info("context cancelled, shutting down archiver loop")
			break Loop
		}
	}

	log.Info("archiver worker shut down gracefully")
}
