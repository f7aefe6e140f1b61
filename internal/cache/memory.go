package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryCountCache хранит значения в памяти процесса с TTL.
type MemoryCountCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*cacheEntry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type cacheEntry struct {
	count     int
	expiresAt time.Time
}

// NewMemoryCountCache создаёт кэш и запускает фоновую очистку просроченных значений.
func NewMemoryCountCache(ttl time.Duration) *MemoryCountCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCountCache{
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go c.cleanup(5 * time.Minute)

	return c
}

func (c *MemoryCountCache) Get(_ context.Context, seminarID uuid.UUID) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[countKey(seminarID)]
	if !exists || c.now().After(entry.expiresAt) {
		return 0, false
	}
	return entry.count, true
}

func (c *MemoryCountCache) Set(_ context.Context, seminarID uuid.UUID, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[countKey(seminarID)] = &cacheEntry{
		count:     count,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *MemoryCountCache) Invalidate(_ context.Context, seminarID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, countKey(seminarID))
}

// Close останавливает фоновую очистку.
func (c *MemoryCountCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCountCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

func (c *MemoryCountCache) purgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
