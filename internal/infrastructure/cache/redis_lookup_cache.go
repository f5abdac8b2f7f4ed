package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/domain/datastore"
)

const defaultKeyPrefix = "financeiro:lookup:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisLookupCache stores one hash per collection, field = id, value = name.
// Shared by every instance, it is the L2 of the tiered cache.
type RedisLookupCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisLookupCache creates a cache over an existing client
func NewRedisLookupCache(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisLookupCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLookupCache{client: client, keyPrefix: keyPrefix, logger: logger}
}

func (c *RedisLookupCache) key(kind datastore.Collection) string {
	return c.keyPrefix + string(kind)
}

// GetMany returns the cached names among ids
func (c *RedisLookupCache) GetMany(ctx context.Context, kind datastore.Collection, ids []string) (map[string]string, error) {
	found := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	values, err := c.client.HMGet(ctx, c.key(kind), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup names: %w", err)
	}
	for i, v := range values {
		if name, ok := v.(string); ok {
			found[ids[i]] = name
		}
	}
	return found, nil
}

// SetMany stores names for kind
func (c *RedisLookupCache) SetMany(ctx context.Context, kind datastore.Collection, names map[string]string) error {
	if len(names) == 0 {
		return nil
	}
	values := make(map[string]any, len(names))
	for id, name := range names {
		values[id] = name
	}
	if err := c.client.HSet(ctx, c.key(kind), values).Err(); err != nil {
		return fmt.Errorf("failed to write lookup names: %w", err)
	}
	c.logger.Debug("Cached lookup names in L2",
		zap.String("collection", string(kind)),
		zap.Int("count", len(names)))
	return nil
}

// Invalidate drops every name cached for kind
func (c *RedisLookupCache) Invalidate(ctx context.Context, kind datastore.Collection) error {
	if err := c.client.Del(ctx, c.key(kind)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate lookup names: %w", err)
	}
	return nil
}
