package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/application/lookup"
	"github.com/backoffice/financeiro/internal/infrastructure/config"
)

// LookupCacheFactory creates lookup caches based on configuration
type LookupCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LookupCacheFactoryOption is a functional option for configuring the factory
type LookupCacheFactoryOption func(*LookupCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LookupCacheFactoryOption {
	return func(f *LookupCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) LookupCacheFactoryOption {
	return func(f *LookupCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLookupCacheFactory creates a new factory
func NewLookupCacheFactory(cfg config.RedisConfig, opts ...LookupCacheFactoryOption) *LookupCacheFactory {
	f := &LookupCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// LookupCache is the cache handed to the resolver plus the resources behind it
type LookupCache struct {
	lookup.Cache
	tiered *TieredLookupCache
	client *redis.Client
}

// Subscribe runs the cross-instance invalidation loop when the cache is
// tiered. It blocks until ctx is cancelled.
func (c *LookupCache) Subscribe(ctx context.Context) error {
	if c.tiered == nil {
		return nil
	}
	return c.tiered.StartInvalidationSubscription(ctx)
}

// Close releases the Redis connection, if any
func (c *LookupCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// CreateInMemoryCache creates a process-local cache. Other instances do not
// see its invalidations.
func (f *LookupCacheFactory) CreateInMemoryCache() *LookupCache {
	return &LookupCache{Cache: NewInMemoryLookupCache(WithInMemoryLogger(f.logger))}
}

// CreateTieredCache creates an L1 in-memory + L2 Redis cache with Pub/Sub invalidation
func (f *LookupCacheFactory) CreateTieredCache() (*LookupCache, error) {
	client, err := NewRedisClient(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis lookup cache: %w", err)
	}
	tiered := NewTieredLookupCache(
		NewInMemoryLookupCache(WithInMemoryLogger(f.logger)),
		NewRedisLookupCache(client, f.redisConfig.KeyPrefix, f.logger),
		NewRedisLookupInvalidator(client, uuid.NewString(), WithInvalidatorLogger(f.logger)),
		f.logger,
	)
	return &LookupCache{Cache: tiered, tiered: tiered, client: client}, nil
}

// CreateCache creates the tiered cache when Redis is enabled, falling back to
// in-memory if Redis is unreachable and fallback is allowed.
func (f *LookupCacheFactory) CreateCache() (*LookupCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory lookup cache")
		return f.CreateInMemoryCache(), nil
	}

	c, err := f.CreateTieredCache()
	if err == nil {
		f.logger.Info("using tiered lookup cache")
		return c, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for lookup cache but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory lookup cache. "+
		"Catalog edits on other instances will not invalidate this cache.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
