package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "kitchen:analytics:"

// RedisResultCache implements analytics.ResultCache on Redis so that every
// API instance shares cached results. Rows are stored as JSON.
type RedisResultCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisResultCache connects to Redis and verifies the connection
func NewRedisResultCache(cfg config.RedisConfig) (*RedisResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisResultCacheWithClient(client, ""), nil
}

// NewRedisResultCacheWithClient wraps an existing client
func NewRedisResultCacheWithClient(client *redis.Client, keyPrefix string) *RedisResultCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisResultCache{client: client, keyPrefix: keyPrefix}
}

// Get loads rows for key. A missing key is a miss, not an error.
func (c *RedisResultCache) Get(ctx context.Context, key string) ([]analytics.DishAnalytics, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached result: %w", err)
	}

	var rows []analytics.DishAnalytics
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return rows, true, nil
}

// Set stores rows under key with ttl. A non-positive ttl stores nothing.
func (c *RedisResultCache) Set(ctx context.Context, key string, rows []analytics.DishAnalytics, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisResultCache) Close() error {
	return c.client.Close()
}

var _ analytics.ResultCache = (*RedisResultCache)(nil)
