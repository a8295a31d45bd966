package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/storelink/backend/internal/domain/shared"
	"github.com/storelink/backend/internal/infrastructure/config"
)

// IdempotencyStoreFactory selects a dedup backend at startup: Redis when
// reachable, otherwise in-memory if fallback is allowed.
type IdempotencyStoreFactory struct {
	redisConfig      config.RedisConfig
	logger           *zap.Logger
	inMemoryFallback bool
}

// IdempotencyStoreFactoryOption configures the factory.
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the factory logger.
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether the factory may fall back to the
// in-memory store when Redis is unreachable. Defaults to true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.inMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a factory for the given Redis settings.
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:      cfg,
		logger:           zap.NewNop(),
		inMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis-backed store when Redis answers, otherwise the
// in-memory store. A single-instance deployment loses nothing with the
// fallback; a multi-instance one risks duplicate notifications, hence the
// warning.
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	store, err := NewRedisIdempotencyStore(
		f.redisConfig.Host,
		f.redisConfig.Port,
		f.redisConfig.Password,
		f.redisConfig.DB,
	)
	if err == nil {
		f.logger.Info("using redis idempotency store")
		return store, nil
	}

	if !f.inMemoryFallback {
		return nil, fmt.Errorf("cache: redis required for event dedup: %w", err)
	}

	f.logger.Warn("redis unavailable, using in-memory idempotency store",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
