package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jafarlihi/cppq-go"
	"github.com/jafarlihi/cppq-go/internal/adminapi"
	"github.com/jafarlihi/cppq-go/internal/config"
	"github.com/jafarlihi/cppq-go/internal/events"
	"github.com/jafarlihi/cppq-go/internal/logger"
	"github.com/jafarlihi/cppq-go/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, os.Getenv("ENV") != "production")
	log := logger.Get()
	log.Info().Msg("starting cppq server")

	store := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}()

	publisher := events.NewRedisPubSub(store)

	queues := queuesFromConfig(cfg.Queues)

	reg := cppq.NewHandlerRegistry()
	reg.Register("echo", echoHandler)
	reg.Register("sleep", sleepHandler)
	reg.Register("fail", failHandler)

	hooks := buildHooks(publisher)

	server := cppq.NewServer(store, reg, cppq.ServerConfig{
		Queues:      queues,
		Concurrency: cfg.Worker.Concurrency,
		Recovery: cppq.RecoveryOptions{
			TimeoutMs:  cfg.Recovery.TimeoutMs,
			CheckEvery: cfg.Recovery.CheckEvery,
		},
		Cron: cppq.CronOptions{
			CheckEvery: cfg.Cron.CheckEvery,
		},
		Hooks: hooks,
	})

	admin := adminapi.NewServer(cfg, store)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      admin,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	admin.Start(ctx)

	go func() {
		if err := server.Run(ctx); err != nil {
			log.Error().Err(err).Msg("dispatch loop stopped")
		}
	}()

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("admin HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("admin HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	admin.Stop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("admin HTTP server shutdown error")
	}

	log.Info().Msg("server stopped")
}

func queuesFromConfig(queues map[string]int) []cppq.QueuePriority {
	result := make([]cppq.QueuePriority, 0, len(queues))
	for name, priority := range queues {
		result = append(result, cppq.QueuePriority{Name: name, Priority: priority})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func buildHooks(publisher *events.RedisPubSub) *cppq.Hooks {
	ctx := context.Background()

	return &cppq.Hooks{
		OnEnqueued: func(queue string, t *cppq.Task) {
			metrics.RecordEnqueued(queue, t.Type)
			publishTaskEvent(ctx, publisher, events.EventEnqueued, queue, t, nil)
		},
		OnDequeued: func(queue string, t *cppq.Task) {
			source := "pending"
			if t.Schedule != nil {
				source = "scheduled"
			}
			metrics.RecordDequeued(queue, source, 0)
			publishTaskEvent(ctx, publisher, events.EventDequeued, queue, t, nil)
		},
		OnCompleted: func(queue string, t *cppq.Task) {
			metrics.RecordCompleted(queue, t.Type)
			publishTaskEvent(ctx, publisher, events.EventCompleted, queue, t, nil)
		},
		OnFailed: func(queue string, t *cppq.Task, cause error) {
			metrics.RecordFailed(queue, t.Type)
			publishTaskEvent(ctx, publisher, events.EventFailed, queue, t, cause)
		},
		OnRetried: func(queue string, t *cppq.Task, cause error) {
			metrics.RecordRetried(queue, t.Type)
			publishTaskEvent(ctx, publisher, events.EventRetried, queue, t, cause)
		},
		OnRecovered: func(queue, uuid string) {
			metrics.RecordRecovered(queue)
			_ = publisher.PublishTaskEvent(ctx, events.EventRecovered, queue, uuid, "", nil)
		},
		OnStoreError: func(err error) {
			metrics.RecordStoreError("unknown")
			logger.Error().Err(err).Msg("store error")
		},
	}
}

func publishTaskEvent(ctx context.Context, publisher *events.RedisPubSub, eventType events.EventType, queue string, t *cppq.Task, cause error) {
	extra := map[string]interface{}{}
	if cause != nil {
		extra["error"] = cause.Error()
	}
	if err := publisher.PublishTaskEvent(ctx, eventType, queue, t.UUID, t.Type, extra); err != nil {
		logger.Error().Err(err).Str("queue", queue).Str("uuid", t.UUID).Msg("failed to publish task event")
	}
}

func echoHandler(ctx context.Context, t *cppq.Task) error {
	logger.Info().Str("task_uuid", t.UUID).Str("payload", t.Payload).Msg("echo handler processing task")
	t.Result = t.Payload
	return nil
}

func sleepHandler(ctx context.Context, t *cppq.Task) error {
	select {
	case <-time.After(time.Second):
		t.Result = "slept 1s"
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func failHandler(ctx context.Context, t *cppq.Task) error {
	return fmt.Errorf("intentional failure for testing")
}
