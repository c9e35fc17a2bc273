package lock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewDistributedLock_UniqueValues(t *testing.T) {
	a := NewDistributedLock(nil, "cleanup", time.Minute)
	b := NewDistributedLock(nil, "cleanup", time.Minute)

	if a.value == b.value {
		t.Error("lock holders must have distinct values")
	}
	if a.Key() != "cleanup" {
		t.Errorf("key = %q", a.Key())
	}
}

func TestWithLock_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if os.Getenv("INTEGRATION_TEST") != "true" || addr == "" {
		t.Skip("Skipping redis lock test. Set INTEGRATION_TEST=true and REDIS_ADDR to run.")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	key := "test:lock:" + time.Now().Format("150405.000000")

	first := NewDistributedLock(client, key, 10*time.Second)
	second := NewDistributedLock(client, key, 10*time.Second)

	err := first.WithLock(ctx, func(ctx context.Context) error {
		if err := second.WithLock(ctx, func(context.Context) error { return nil }); !errors.Is(err, ErrLockNotAcquired) {
			t.Errorf("expected ErrLockNotAcquired while held, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock: %v", err)
	}

	ran := false
	if err := second.WithLock(ctx, func(context.Context) error { ran = true; return nil }); err != nil {
		t.Fatalf("second WithLock after release: %v", err)
	}
	if !ran {
		t.Error("expected fn to run once the lock was free")
	}
}
