package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores encoded response bodies for a fixed time. A miss is always
// safe: callers recompute from the database.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Entry is one stored value with its expiry.
type Entry struct {
	Value      []byte
	Expiration time.Time
}

// IsExpired reports whether the entry is past its expiry at now.
func (e Entry) IsExpired(now time.Time) bool {
	return !now.Before(e.Expiration)
}

// Memory is a process-local cache. Expired entries are removed when they are
// looked up; there is no background sweeper.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	maxEntries int
	now        func() time.Time
}

// NewMemory returns an empty cache holding at most maxEntries keys. A
// non-positive bound means unbounded.
func NewMemory(maxEntries int) *Memory {
	return &Memory{
		entries:    make(map[string]Entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if entry.IsExpired(c.now()) {
		c.mu.Lock()
		// re-check, a concurrent Set may have refreshed it
		if current, ok := c.entries[key]; ok && current.IsExpired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return entry.Value, true
}

// Set stores value under key for ttl. The last writer wins.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evict(now)
	}

	c.entries[key] = Entry{
		Value:      value,
		Expiration: now.Add(ttl),
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evict makes room for one entry: expired entries go first, otherwise the
// entry closest to expiry. Caller holds the write lock.
func (c *Memory) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, entry := range c.entries {
		if entry.IsExpired(now) {
			delete(c.entries, key)
			continue
		}
		if oldestKey == "" || entry.Expiration.Before(oldest) {
			oldestKey = key
			oldest = entry.Expiration
		}
	}

	if len(c.entries) >= c.maxEntries && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
