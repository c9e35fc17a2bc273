package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps recent values in process and, when a Redis client is given,
// shares them between instances. Redis errors degrade to a miss.
type Cache struct {
	l1     *LRUCache
	l2     *redis.Client
	ttl    time.Duration
	prefix string
}

func NewMultiTierCache(capacity int, redisClient *redis.Client, ttl time.Duration, prefix string) *Cache {
	return &Cache{
		l1:     NewLRUCache(capacity, ttl),
		l2:     redisClient,
		ttl:    ttl,
		prefix: prefix,
	}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, found := c.l1.Get(key); found {
		return val, true
	}
	if c.l2 == nil {
		return nil, false
	}

	val, err := c.l2.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	c.l1.Set(key, val)
	return val, true
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	c.l1.Set(key, value)
	if c.l2 == nil {
		return nil
	}
	return c.l2.Set(ctx, c.prefix+key, value, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.l1.Delete(key)
	if c.l2 == nil {
		return nil
	}
	if err := c.l2.Del(ctx, c.prefix+key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, found := c.Get(ctx, key)
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data)
}
