package cache

import (
	"context"
	"sync"
	"time"
)

// memoryEntry is a stored value with its expiry
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryClient implements Client with an in-process map.
// This is suitable for single-instance deployments and testing.
type MemoryClient struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryClient creates a new in-memory client.
// It starts a background goroutine to clean up expired entries.
func NewMemoryClient(cleanupInterval time.Duration) *MemoryClient {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	c := &MemoryClient{
		entries:  make(map[string]memoryEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop(cleanupInterval)

	return c
}

// Get implements Client
func (c *MemoryClient) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements Client
func (c *MemoryClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	c.entries[key] = memoryEntry{value: stored, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete implements Client
func (c *MemoryClient) Delete(_ context.Context, keys ...string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, k := range keys {
		if _, ok := c.entries[k]; ok {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

// DeletePattern implements Client using the glob rules of Redis MATCH
func (c *MemoryClient) DeletePattern(_ context.Context, pattern string) (int, error) {
	re, err := compileGlob(pattern)
	if err != nil {
		return 0, &Error{Op: "delete_pattern", Key: pattern, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if re.MatchString(k) {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (c *MemoryClient) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *MemoryClient) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
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

// cleanup removes expired entries
func (c *MemoryClient) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Size returns the number of stored entries, expired ones included (for testing/monitoring)
func (c *MemoryClient) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure MemoryClient implements Client
var _ Client = (*MemoryClient)(nil)
