package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kitchenops/backend/internal/domain/analytics"
)

type entry struct {
	rows      []analytics.DishAnalytics
	expiresAt time.Time
}

// InMemoryResultCache implements analytics.ResultCache with a process-local map.
// It is suitable for single-instance deployments and tests.
type InMemoryResultCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryResultCache creates a cache and starts its expiry sweeper
func NewInMemoryResultCache() *InMemoryResultCache {
	c := &InMemoryResultCache{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop(time.Minute)

	return c
}

// Get returns a copy of the cached rows for key
func (c *InMemoryResultCache) Get(_ context.Context, key string) ([]analytics.DishAnalytics, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return append([]analytics.DishAnalytics(nil), e.rows...), true, nil
}

// Set stores a copy of rows. A non-positive ttl stores nothing.
func (c *InMemoryResultCache) Set(_ context.Context, key string, rows []analytics.DishAnalytics, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		rows:      append([]analytics.DishAnalytics{}, rows...),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Len returns the number of stored entries, expired or not
func (c *InMemoryResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the sweeper. Safe to call multiple times.
func (c *InMemoryResultCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryResultCache) cleanupLoop(every time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryResultCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

var _ analytics.ResultCache = (*InMemoryResultCache)(nil)
