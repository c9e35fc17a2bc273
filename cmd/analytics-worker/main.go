package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Varun5711/modesta/internal/analytics"
	"github.com/Varun5711/modesta/internal/clickhouse"
	"github.com/Varun5711/modesta/internal/config"
	"github.com/Varun5711/modesta/internal/logger"
	"github.com/Varun5711/modesta/internal/redis"
)

func main() {
	log := logger.New("analytics-worker")

	cfg := config.LoadWorker()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	chClient, err := clickhouse.NewClient(ctx, cfg.ClickHouse)
	if err != nil {
		log.Fatal("Failed to connect to ClickHouse: %v", err)
	}
	defer chClient.Close()

	if err := chClient.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to prepare ClickHouse schema: %v", err)
	}

	consumer := analytics.NewConsumer(redisClient.Raw(), chClient, analytics.Config{
		Stream:       cfg.Redis.StreamName,
		Group:        cfg.Analytics.ConsumerGroup,
		Consumer:     cfg.Analytics.ConsumerName,
		BatchSize:    cfg.Analytics.BatchSize,
		PollInterval: cfg.Analytics.PollInterval,
		BlockTime:    cfg.Analytics.BlockTime,
	})
	if err := consumer.EnsureGroup(ctx); err != nil {
		log.Fatal("Failed to create consumer group: %v", err)
	}

	log.Info("Processing auth events from %s", cfg.Redis.StreamName)
	consumer.Run(ctx)
	log.Info("Shutting down")
}
