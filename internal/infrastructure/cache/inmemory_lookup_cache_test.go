package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/infrastructure/config"
)

func TestInMemoryLookupCache_GetMany(t *testing.T) {
	cache := NewInMemoryLookupCache()
	ctx := context.Background()

	found, err := cache.GetMany(ctx, datastore.Clients, []string{"c1"})
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, cache.SetMany(ctx, datastore.Clients, map[string]string{"c1": "Acme", "c2": "Beta"}))

	found, err = cache.GetMany(ctx, datastore.Clients, []string{"c1", "c3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c1": "Acme"}, found)

	hits, misses := cache.GetStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestInMemoryLookupCache_CollectionsAreIsolated(t *testing.T) {
	cache := NewInMemoryLookupCache()
	ctx := context.Background()

	require.NoError(t, cache.SetMany(ctx, datastore.Clients, map[string]string{"x": "Cliente"}))
	require.NoError(t, cache.SetMany(ctx, datastore.Categories, map[string]string{"x": "Categoria"}))

	found, err := cache.GetMany(ctx, datastore.Categories, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, "Categoria", found["x"])
	assert.Equal(t, 1, cache.Count(datastore.Clients))
}

func TestInMemoryLookupCache_Invalidate(t *testing.T) {
	cache := NewInMemoryLookupCache()
	ctx := context.Background()

	require.NoError(t, cache.SetMany(ctx, datastore.Clients, map[string]string{"c1": "Acme"}))
	require.NoError(t, cache.SetMany(ctx, datastore.Suppliers, map[string]string{"s1": "Fornecedor"}))

	require.NoError(t, cache.Invalidate(ctx, datastore.Clients))
	assert.Equal(t, 0, cache.Count(datastore.Clients))
	assert.Equal(t, 1, cache.Count(datastore.Suppliers))

	require.NoError(t, cache.InvalidateAll(ctx))
	assert.Equal(t, 0, cache.Count(datastore.Suppliers))
}

func TestInMemoryLookupCache_ResetStats(t *testing.T) {
	cache := NewInMemoryLookupCache()
	ctx := context.Background()

	_, _ = cache.GetMany(ctx, datastore.Clients, []string{"a", "b"})
	cache.ResetStats()

	hits, misses := cache.GetStats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestInMemoryLookupCache_Concurrency(t *testing.T) {
	cache := NewInMemoryLookupCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			_ = cache.SetMany(ctx, datastore.Clients, map[string]string{id: "Cliente " + id})
			_, _ = cache.GetMany(ctx, datastore.Clients, []string{id})
			if i%10 == 0 {
				_ = cache.Invalidate(ctx, datastore.Clients)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Count(datastore.Clients), 50)
}

func TestLookupCacheFactory_InMemoryWhenRedisDisabled(t *testing.T) {
	f := NewLookupCacheFactory(config.RedisConfig{Enabled: false})

	c, err := f.CreateCache()
	require.NoError(t, err)
	_, ok := c.Cache.(*InMemoryLookupCache)
	assert.True(t, ok)
	assert.NoError(t, c.Subscribe(context.Background()))
	assert.NoError(t, c.Close())
}

func TestLookupCacheFactory_FallbackWhenRedisUnreachable(t *testing.T) {
	cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	c, err := NewLookupCacheFactory(cfg).CreateCache()
	require.NoError(t, err)
	_, ok := c.Cache.(*InMemoryLookupCache)
	assert.True(t, ok)

	_, err = NewLookupCacheFactory(cfg, WithInMemoryFallback(false)).CreateCache()
	assert.Error(t, err)
}
