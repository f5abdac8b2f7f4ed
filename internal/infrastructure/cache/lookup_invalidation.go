package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/domain/datastore"
)

const defaultInvalidationChannel = "financeiro:lookup:invalidate"

// InvalidationMessage tells other instances to drop a collection from L1
type InvalidationMessage struct {
	Collection datastore.Collection `json:"collection"`
	Origin     string               `json:"origin"`
	Timestamp  int64                `json:"timestamp"`
}

// RedisLookupInvalidator broadcasts invalidations over Redis Pub/Sub
type RedisLookupInvalidator struct {
	client    *redis.Client
	channel   string
	origin    string
	logger    *zap.Logger
	mu        sync.Mutex
	isRunning bool
}

// RedisLookupInvalidatorOption is a functional option for configuring the invalidator
type RedisLookupInvalidatorOption func(*RedisLookupInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisLookupInvalidatorOption {
	return func(i *RedisLookupInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) RedisLookupInvalidatorOption {
	return func(i *RedisLookupInvalidator) {
		i.logger = logger
	}
}

// NewRedisLookupInvalidator creates an invalidator over a shared client.
// origin identifies this instance so it can ignore its own messages.
func NewRedisLookupInvalidator(client *redis.Client, origin string, opts ...RedisLookupInvalidatorOption) *RedisLookupInvalidator {
	i := &RedisLookupInvalidator{
		client:  client,
		channel: defaultInvalidationChannel,
		origin:  origin,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Publish announces that kind changed
func (i *RedisLookupInvalidator) Publish(ctx context.Context, kind datastore.Collection) error {
	data, err := json.Marshal(InvalidationMessage{
		Collection: kind,
		Origin:     i.origin,
		Timestamp:  time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish lookup invalidation",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Subscribe blocks, invoking callback for every invalidation published by
// another instance, until ctx is cancelled.
func (i *RedisLookupInvalidator) Subscribe(ctx context.Context, callback func(kind datastore.Collection)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
	}()

	pubsub := i.client.Subscribe(ctx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("Subscribed to lookup invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			i.logger.Info("Lookup invalidation subscription stopped")
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Lookup invalidation channel closed")
				return nil
			}
			var m InvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				i.logger.Error("Failed to unmarshal lookup invalidation",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			if m.Origin == i.origin {
				continue
			}
			callback(m.Collection)
		}
	}
}
