package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	items   map[string]memoryItem
	maxKeys int
	now     func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewMemoryCache returns a process-local cache. Expired items are swept every
// cfg.CleanupInterval until Close.
func NewMemoryCache(cfg Config) Cache {
	c := newMemoryCache(cfg.MaxKeys, time.Now)
	if cfg.CleanupInterval > 0 {
		go c.sweepEvery(cfg.CleanupInterval)
	}
	return c
}

func newMemoryCache(maxKeys int, now func() time.Time) *memoryCache {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &memoryCache{
		items:   make(map[string]memoryItem),
		maxKeys: maxKeys,
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(item.expiresAt) {
		return nil, false, nil
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxKeys {
		c.evictLocked()
	}
	c.items[key] = memoryItem{value: stored, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	return nil
}

// evictLocked drops expired items, or the item closest to expiry when none has expired.
func (c *memoryCache) evictLocked() {
	now := c.now()
	var (
		victim  string
		soonest time.Time
	)
	for key, item := range c.items {
		if !now.Before(item.expiresAt) {
			delete(c.items, key)
			continue
		}
		if victim == "" || item.expiresAt.Before(soonest) {
			victim, soonest = key, item.expiresAt
		}
	}
	if len(c.items) >= c.maxKeys && victim != "" {
		delete(c.items, victim)
	}
}

func (c *memoryCache) sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, item := range c.items {
		if !now.Before(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

func (c *memoryCache) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}
