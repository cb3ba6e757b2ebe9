package cache

import (
	"context"
	"fmt"

	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/comufarm/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the claim store selected by configuration.
// A Redis store that cannot connect falls back to memory outside production.
func NewIdempotencyStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Idempotency.StoreType != "redis" {
		logger.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, &redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Idempotency.KeyPrefix)
	if err == nil {
		logger.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
		return store, nil
	}
	if cfg.App.Env == "production" {
		return nil, fmt.Errorf("redis idempotency store unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	return NewInMemoryIdempotencyStore(), nil
}
