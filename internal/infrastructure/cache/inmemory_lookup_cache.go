package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/domain/datastore"
)

// InMemoryLookupCache keeps id → name maps per collection in process memory.
// It is the L1 of the tiered cache and the whole cache when Redis is off.
type InMemoryLookupCache struct {
	mu      sync.RWMutex
	entries map[datastore.Collection]map[string]string
	logger  *zap.Logger

	// Stats for monitoring
	hits   int64
	misses int64
}

// InMemoryLookupCacheOption is a functional option for configuring the cache
type InMemoryLookupCacheOption func(*InMemoryLookupCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryLookupCacheOption {
	return func(c *InMemoryLookupCache) {
		c.logger = logger
	}
}

// NewInMemoryLookupCache creates an empty in-memory lookup cache
func NewInMemoryLookupCache(opts ...InMemoryLookupCacheOption) *InMemoryLookupCache {
	c := &InMemoryLookupCache{
		entries: make(map[datastore.Collection]map[string]string),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMany returns the cached names among ids
func (c *InMemoryLookupCache) GetMany(_ context.Context, kind datastore.Collection, ids []string) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	found := make(map[string]string, len(ids))
	names := c.entries[kind]
	for _, id := range ids {
		if name, ok := names[id]; ok {
			found[id] = name
		}
	}
	atomic.AddInt64(&c.hits, int64(len(found)))
	atomic.AddInt64(&c.misses, int64(len(ids)-len(found)))
	return found, nil
}

// SetMany stores names for kind
func (c *InMemoryLookupCache) SetMany(_ context.Context, kind datastore.Collection, names map[string]string) error {
	if len(names) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.entries[kind]
	if !ok {
		bucket = make(map[string]string, len(names))
		c.entries[kind] = bucket
	}
	for id, name := range names {
		bucket[id] = name
	}
	c.logger.Debug("Cached lookup names in L1",
		zap.String("collection", string(kind)),
		zap.Int("count", len(names)))
	return nil
}

// Invalidate drops every name cached for kind
func (c *InMemoryLookupCache) Invalidate(_ context.Context, kind datastore.Collection) error {
	c.mu.Lock()
	delete(c.entries, kind)
	c.mu.Unlock()

	c.logger.Debug("Invalidated L1 lookup cache", zap.String("collection", string(kind)))
	return nil
}

// InvalidateAll drops every cached name
func (c *InMemoryLookupCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[datastore.Collection]map[string]string)
	c.mu.Unlock()

	c.logger.Info("Invalidated all L1 lookup cache")
	return nil
}

// Count returns the number of names cached for kind
func (c *InMemoryLookupCache) Count(kind datastore.Collection) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries[kind])
}

// GetStats returns cache statistics
func (c *InMemoryLookupCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// ResetStats resets the cache statistics
func (c *InMemoryLookupCache) ResetStats() {
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}
