package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestOnce(t *testing.T) {
	policy := Policy{Enabled: true}

	t.Run("success runs once", func(t *testing.T) {
		calls := 0
		err := Once(context.Background(), policy, "op", func(context.Context) error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retryable failure runs twice", func(t *testing.T) {
		calls := 0
		err := Once(context.Background(), policy, "op", func(context.Context) error {
			calls++
			if calls == 1 {
				return shared.ErrUnavailable
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("never more than two attempts", func(t *testing.T) {
		calls := 0
		err := Once(context.Background(), policy, "op", func(context.Context) error {
			calls++
			return shared.ErrTimeout
		})
		assert.True(t, errors.Is(err, shared.ErrTimeout))
		assert.Equal(t, 2, calls)
	})

	t.Run("business errors are not retried", func(t *testing.T) {
		calls := 0
		err := Once(context.Background(), policy, "op", func(context.Context) error {
			calls++
			return shared.ErrInsufficientStock
		})
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, 1, calls)
	})

	t.Run("disabled policy does not retry", func(t *testing.T) {
		calls := 0
		_ = Once(context.Background(), Policy{}, "op", func(context.Context) error {
			calls++
			return shared.ErrUnavailable
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops retry", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		_ = Once(ctx, policy, "op", func(context.Context) error {
			calls++
			return shared.ErrUnavailable
		})
		assert.Equal(t, 1, calls)
	})
}
