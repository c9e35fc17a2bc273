package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a fixed-capacity in-process cache whose entries also expire
// after ttl. A zero ttl keeps entries until they are evicted.
type LRUCache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[string]*list.Element
	lruList  *list.List
	mu       sync.Mutex
}

type entry struct {
	key     string
	value   []byte
	expires time.Time
}

func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, found := c.items[key]
	if !found {
		return nil, false
	}
	e := elem.Value.(*entry)
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.remove(elem)
		return nil, false
	}
	c.lruList.MoveToFront(elem)
	return e.value, true
}

func (c *LRUCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	if elem, found := c.items[key]; found {
		c.lruList.MoveToFront(elem)
		e := elem.Value.(*entry)
		e.value = value
		e.expires = expires
		return
	}

	c.items[key] = c.lruList.PushFront(&entry{key: key, value: value, expires: expires})

	if c.lruList.Len() > c.capacity {
		c.remove(c.lruList.Back())
	}
}

func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.items[key]; found {
		c.remove(elem)
	}
}

func (c *LRUCache) remove(elem *list.Element) {
	if elem == nil {
		return
	}
	c.lruList.Remove(elem)
	delete(c.items, elem.Value.(*entry).key)
}

func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}
