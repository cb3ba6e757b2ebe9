// Package retry runs idempotent operations again after transient failures.
package retry

import (
	"context"
	"time"

	"github.com/comufarm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Policy controls a single automatic retry
type Policy struct {
	// Enabled turns the retry on. Only idempotent operations should enable it.
	Enabled bool
	// Delay is how long to wait before the second attempt
	Delay time.Duration
	// Logger receives a warning for every retried failure
	Logger *zap.Logger
}

// DefaultPolicy retries once after 100ms
func DefaultPolicy() Policy {
	return Policy{Enabled: true, Delay: 100 * time.Millisecond, Logger: zap.NewNop()}
}

// Once runs fn and, if it fails with a retryable error and the policy
// allows it, runs fn exactly one more time. The second error is returned
// as is.
func Once(ctx context.Context, policy Policy, op string, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil || !policy.Enabled || !shared.IsRetryable(err) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}

	logger := policy.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Warn("Retrying operation after transient failure",
		zap.String("operation", op),
		zap.Duration("delay", policy.Delay),
		zap.Error(err),
	)

	if policy.Delay > 0 {
		timer := time.NewTimer(policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return fn(ctx)
}
