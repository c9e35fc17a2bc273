package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Varun5711/modesta/internal/config"
	"github.com/Varun5711/modesta/internal/database"
	"github.com/Varun5711/modesta/internal/lock"
	"github.com/Varun5711/modesta/internal/logger"
	"github.com/Varun5711/modesta/internal/redis"
	"github.com/Varun5711/modesta/internal/storage"
)

const lockKey = "lock:cleanup:verification-tokens"

func main() {
	log := logger.New("cleanup-worker")

	cfg := config.LoadWorker()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	dbManager, err := database.NewDBManager(ctx, database.Config{
		PrimaryDSN:      cfg.Database.PrimaryDSN,
		ReplicaDSNs:     cfg.Database.ReplicaDSNs,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer dbManager.Close()

	store := storage.NewPostgresUserStorage(dbManager)
	cleanupLock := lock.NewDistributedLock(redisClient.Raw(), lockKey, cfg.Cleanup.LockTTL)

	log.Info("Cleanup worker started. Running every %v...", cfg.Cleanup.Interval)

	runCleanup(ctx, store, cleanupLock, log)

	ticker := time.NewTicker(cfg.Cleanup.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down")
			return
		case <-ticker.C:
			runCleanup(ctx, store, cleanupLock, log)
		}
	}
}

func runCleanup(ctx context.Context, store storage.UserStore, l *lock.DistributedLock, log *logger.Logger) {
	err := l.WithLock(ctx, func(ctx context.Context) error {
		cleared, err := store.ClearExpiredVerificationTokens(ctx, time.Now())
		if err != nil {
			return err
		}
		if cleared > 0 {
			log.Info("Cleared %d expired verification tokens", cleared)
		} else {
			log.Debug("No expired verification tokens found")
		}
		return nil
	})

	switch {
	case errors.Is(err, lock.ErrLockNotAcquired):
		log.Debug("Another worker holds %s, skipping run", l.Key())
	case err != nil:
		log.Error("Cleanup failed: %v", err)
	}
}
