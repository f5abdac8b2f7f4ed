package cache

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/domain/datastore"
)

// TieredLookupCache reads L1 (process memory) before L2 (Redis) and fills L1
// from L2 hits. Invalidations clear both tiers and are broadcast so other
// instances drop their L1 copy.
type TieredLookupCache struct {
	l1          *InMemoryLookupCache
	l2          *RedisLookupCache
	invalidator *RedisLookupInvalidator
	logger      *zap.Logger

	// Stats for monitoring
	l1Hits int64
	l2Hits int64
	misses int64
}

// NewTieredLookupCache creates a tiered cache; invalidator may be nil
func NewTieredLookupCache(l1 *InMemoryLookupCache, l2 *RedisLookupCache, invalidator *RedisLookupInvalidator, logger *zap.Logger) *TieredLookupCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredLookupCache{l1: l1, l2: l2, invalidator: invalidator, logger: logger}
}

// StartInvalidationSubscription listens for invalidations from other
// instances. It blocks; run it in a goroutine.
func (c *TieredLookupCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}
	return c.invalidator.Subscribe(ctx, func(kind datastore.Collection) {
		if err := c.l1.Invalidate(context.Background(), kind); err != nil {
			c.logger.Error("Failed to invalidate L1 lookup cache",
				zap.String("collection", string(kind)),
				zap.Error(err))
		}
	})
}

// GetMany returns the cached names among ids (L1 -> L2)
func (c *TieredLookupCache) GetMany(ctx context.Context, kind datastore.Collection, ids []string) (map[string]string, error) {
	found, err := c.l1.GetMany(ctx, kind, ids)
	if err != nil {
		c.logger.Warn("L1 lookup cache error", zap.String("collection", string(kind)), zap.Error(err))
		found = make(map[string]string, len(ids))
	}
	atomic.AddInt64(&c.l1Hits, int64(len(found)))
	if len(found) == len(ids) {
		return found, nil
	}

	rest := make([]string, 0, len(ids)-len(found))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			rest = append(rest, id)
		}
	}
	fromL2, err := c.l2.GetMany(ctx, kind, rest)
	if err != nil {
		atomic.AddInt64(&c.misses, int64(len(rest)))
		return found, err
	}
	atomic.AddInt64(&c.l2Hits, int64(len(fromL2)))
	atomic.AddInt64(&c.misses, int64(len(rest)-len(fromL2)))

	if len(fromL2) > 0 {
		if err := c.l1.SetMany(ctx, kind, fromL2); err != nil {
			c.logger.Warn("Failed to populate L1 lookup cache", zap.String("collection", string(kind)), zap.Error(err))
		}
		for id, name := range fromL2 {
			found[id] = name
		}
	}
	return found, nil
}

// SetMany stores names in both tiers
func (c *TieredLookupCache) SetMany(ctx context.Context, kind datastore.Collection, names map[string]string) error {
	if err := c.l2.SetMany(ctx, kind, names); err != nil {
		return err
	}
	return c.l1.SetMany(ctx, kind, names)
}

// Invalidate clears kind from both tiers and notifies other instances
func (c *TieredLookupCache) Invalidate(ctx context.Context, kind datastore.Collection) error {
	if err := c.l2.Invalidate(ctx, kind); err != nil {
		return err
	}
	if err := c.l1.Invalidate(ctx, kind); err != nil {
		c.logger.Warn("Failed to invalidate L1 lookup cache", zap.String("collection", string(kind)), zap.Error(err))
	}
	if c.invalidator != nil {
		if err := c.invalidator.Publish(ctx, kind); err != nil {
			c.logger.Warn("Failed to publish lookup invalidation", zap.String("collection", string(kind)), zap.Error(err))
		}
	}
	return nil
}

// GetStats returns L1 hits, L2 hits and misses
func (c *TieredLookupCache) GetStats() (l1Hits, l2Hits, misses int64) {
	return atomic.LoadInt64(&c.l1Hits), atomic.LoadInt64(&c.l2Hits), atomic.LoadInt64(&c.misses)
}
