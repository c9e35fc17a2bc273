package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Varun5711/modesta/internal/config"
	"github.com/redis/go-redis/v9"
)

// Client wraps the shared go-redis client used for rate limiting, the auth
// event stream and the cleanup lock.
type Client struct {
	client *redis.Client
}

func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(Options(cfg))

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: rdb}, nil
}

// Raw returns the underlying client, or nil when r is nil.
func (r *Client) Raw() *redis.Client {
	if r == nil {
		return nil
	}
	return r.client
}

func (r *Client) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Client) Close() error {
	return r.client.Close()
}

func (r *Client) Stats() map[string]interface{} {
	stats := r.client.PoolStats()
	return map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}
