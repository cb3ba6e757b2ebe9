package shared

import (
	"context"
	"time"
)

// IdempotencyStore records keys that have been claimed so a repeated
// request or event is processed at most once while the claim is alive.
type IdempotencyStore interface {
	// Claim takes key with a TTL. claimed is false when a live claim already
	// holds the key. The token identifies this claim for Release.
	Claim(ctx context.Context, key string, ttl time.Duration) (token string, claimed bool, err error)

	// IsClaimed checks whether key is currently claimed
	IsClaimed(ctx context.Context, key string) (bool, error)

	// Release drops the claim on key if token still owns it. A claim that
	// expired and was retaken by someone else is left alone.
	Release(ctx context.Context, key, token string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for claimed keys
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	// Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
