package cache

import (
	"context"
	"fmt"

	"github.com/treeofhope/backend/internal/domain/shared"
	"github.com/treeofhope/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks the webhook idempotency backend from the
// Redis configuration
type IdempotencyStoreFactory struct {
	cfg           config.RedisConfig
	prefix        string
	logger        *zap.Logger
	allowFallback bool
}

// FactoryOption configures an IdempotencyStoreFactory
type FactoryOption func(*IdempotencyStoreFactory)

func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *IdempotencyStoreFactory) { f.logger = logger }
}

// WithKeyPrefix overrides WebhookKeyPrefix
func WithKeyPrefix(prefix string) FactoryOption {
	return func(f *IdempotencyStoreFactory) { f.prefix = prefix }
}

// WithInMemoryFallback decides what happens when Redis is enabled but down.
// With fallback the in-memory store is used, without it CreateStore fails.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *IdempotencyStoreFactory) { f.allowFallback = allow }
}

func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...FactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		cfg:           cfg,
		prefix:        WebhookKeyPrefix,
		logger:        zap.NewNop(),
		allowFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore connects to Redis when it is enabled
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if !f.cfg.Enabled {
		f.logger.Info("Webhook idempotency kept in memory", zap.String("reason", "redis disabled"))
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, f.cfg, f.prefix)
	switch {
	case err == nil:
		f.logger.Info("Webhook idempotency kept in Redis",
			zap.String("addr", f.cfg.Addr()),
			zap.String("key_prefix", f.prefix))
		return store, nil
	case f.allowFallback:
		f.logger.Warn("Webhook idempotency kept in memory, redeliveries to other replicas may be applied twice",
			zap.String("reason", "redis unreachable"),
			zap.Error(err))
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("redis required for webhook idempotency: %w", err)
	}
}
