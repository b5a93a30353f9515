package cache

import (
	"fmt"
	"io"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ClosableResultCache is a result cache that owns a connection or goroutine
type ClosableResultCache interface {
	analytics.ResultCache
	io.Closer
}

// ResultCacheFactory picks a result cache implementation from configuration
type ResultCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	newRedis              func(config.RedisConfig) (ClosableResultCache, error)
}

// ResultCacheFactoryOption configures the factory
type ResultCacheFactoryOption func(*ResultCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ResultCacheFactoryOption {
	return func(f *ResultCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) ResultCacheFactoryOption {
	return func(f *ResultCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewResultCacheFactory creates a new factory
func NewResultCacheFactory(cfg config.RedisConfig, opts ...ResultCacheFactoryOption) *ResultCacheFactory {
	f := &ResultCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		newRedis: func(c config.RedisConfig) (ClosableResultCache, error) {
			return NewRedisResultCache(c)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a Redis cache when Redis is enabled and reachable,
// otherwise an in-memory cache if fallback is allowed.
func (f *ResultCacheFactory) CreateCache() (ClosableResultCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory result cache")
		return NewInMemoryResultCache(), nil
	}

	c, err := f.newRedis(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis result cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for result cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory result cache. "+
		"Cached results will not be shared between instances.",
		zap.Error(err),
	)
	return NewInMemoryResultCache(), nil
}
