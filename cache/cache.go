package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"crypto-gate-service/domain"
)

type Item struct {
	data     []byte
	storedAt time.Time
	ttl      time.Duration
}

func (i Item) validAt(now time.Time) bool {
	return now.Sub(i.storedAt) < i.ttl
}

type Cache struct {
	store map[string]Item
	lock  *sync.RWMutex
	now   func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

type Option func(c *Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		store: map[string]Item{},
		lock:  &sync.RWMutex{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the payload only while it is younger than its ttl.
// An expired entry behaves exactly like a missing one.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.lock.RLock()
	item, ok := c.store[key]
	c.lock.RUnlock()

	if !ok || !item.validAt(c.now()) {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return item.data, true
}

func (c *Cache) Set(key string, data []byte, ttl time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.store[key] = Item{
		data:     data,
		storedAt: c.now(),
		ttl:      ttl,
	}
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	now := c.now()

	c.lock.Lock()
	defer c.lock.Unlock()

	removed := 0
	for key, item := range c.store {
		if !item.validAt(now) {
			delete(c.store, key)
			removed++
		}
	}
	return removed
}

func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

func (c *Cache) Stats() domain.CacheStats {
	c.lock.RLock()
	keys := len(c.store)
	c.lock.RUnlock()

	return domain.CacheStats{
		Keys:   keys,
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
