package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestLRUCache_SetAndGet(t *testing.T) {
	cache := NewLRUCache(10, 0)

	cache.Set("events:7", []byte(`[1]`))

	value, found := cache.Get("events:7")
	if !found {
		t.Fatal("expected to find events:7")
	}
	if string(value) != `[1]` {
		t.Errorf("expected '[1]', got '%s'", value)
	}

	if _, found := cache.Get("events:30"); found {
		t.Error("expected not to find events:30")
	}
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	cache := NewLRUCache(10, 0)

	cache.Set("key1", []byte("value1"))
	cache.Set("key1", []byte("value2"))

	value, _ := cache.Get("key1")
	if string(value) != "value2" {
		t.Errorf("expected 'value2', got '%s'", value)
	}
	if cache.Len() != 1 {
		t.Errorf("expected length 1, got %d", cache.Len())
	}
}

func TestLRUCache_LRUOrder(t *testing.T) {
	cache := NewLRUCache(3, 0)

	cache.Set("key1", []byte("1"))
	cache.Set("key2", []byte("2"))
	cache.Set("key3", []byte("3"))

	cache.Get("key1")
	cache.Set("key4", []byte("4"))

	if cache.Len() != 3 {
		t.Errorf("expected length 3 after eviction, got %d", cache.Len())
	}
	if _, found := cache.Get("key1"); !found {
		t.Error("expected key1 to still be present (recently accessed)")
	}
	if _, found := cache.Get("key2"); found {
		t.Error("expected key2 to be evicted (LRU)")
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewLRUCache(10, time.Minute)
	cache.now = clock.now

	cache.Set("key1", []byte("value1"))

	clock.t = clock.t.Add(59 * time.Second)
	if _, found := cache.Get("key1"); !found {
		t.Error("expected key1 before expiry")
	}

	clock.t = clock.t.Add(time.Second)
	if _, found := cache.Get("key1"); found {
		t.Error("expected key1 to expire")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry should be dropped, length %d", cache.Len())
	}
}

func TestLRUCache_Delete(t *testing.T) {
	cache := NewLRUCache(10, 0)

	cache.Set("key1", []byte("1"))
	cache.Set("key2", []byte("2"))
	cache.Delete("key1")
	cache.Delete("nonexistent")

	if _, found := cache.Get("key1"); found {
		t.Error("expected key1 to be deleted")
	}
	if cache.Len() != 1 {
		t.Errorf("expected length 1, got %d", cache.Len())
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	cache := NewLRUCache(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + (id+j)%26))
				cache.Set(key, []byte(fmt.Sprint(id*100+j)))
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() > 26 {
		t.Errorf("expected at most 26 keys, got %d", cache.Len())
	}
}

func TestCache_WithoutRedis(t *testing.T) {
	ctx := context.Background()
	c := NewMultiTierCache(10, nil, time.Minute, "analytics:")

	type counts struct{ Total int }
	if found, err := c.GetJSON(ctx, "failures:7", &counts{}); found || err != nil {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}

	if err := c.SetJSON(ctx, "failures:7", counts{Total: 3}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got counts
	found, err := c.GetJSON(ctx, "failures:7", &got)
	if err != nil || !found || got.Total != 3 {
		t.Errorf("got %+v found=%v err=%v", got, found, err)
	}

	if err := c.Delete(ctx, "failures:7"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := c.Get(ctx, "failures:7"); found {
		t.Error("expected miss after delete")
	}
}
