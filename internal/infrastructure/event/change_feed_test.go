package event

import (
	"context"
	"testing"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChangeFeed_DeliversOnlySubscribedTable(t *testing.T) {
	feed := NewChangeFeed(NewInMemoryEventBus(zap.NewNop()))
	bus := feed.bus.(*InMemoryEventBus)

	var orders, products []*marketplace.ChangeEvent
	cancelOrders := feed.Subscribe(marketplace.TableOrders, func(_ context.Context, e *marketplace.ChangeEvent) {
		orders = append(orders, e)
	})
	defer cancelOrders()
	cancelProducts := feed.Subscribe(marketplace.TableProducts, func(_ context.Context, e *marketplace.ChangeEvent) {
		products = append(products, e)
	})
	defer cancelProducts()

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx,
		orderEvent(),
		marketplace.NewChangeEvent(marketplace.TableProducts, marketplace.ChangeUpdate, uuid.New(), nil),
		marketplace.NewChangeEvent(marketplace.TableFeedbacks, marketplace.ChangeInsert, uuid.New(), nil),
	))

	require.Len(t, orders, 1)
	assert.Equal(t, marketplace.ChangeInsert, orders[0].Kind)
	require.Len(t, products, 1)
	assert.Equal(t, marketplace.ChangeUpdate, products[0].Kind)
}

func TestChangeFeed_CancelStopsDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	feed := NewChangeFeed(bus)

	calls := 0
	cancel := feed.Subscribe(marketplace.TableOrders, func(context.Context, *marketplace.ChangeEvent) {
		calls++
	})

	ctx := context.Background()
	_ = bus.Publish(ctx, orderEvent())
	cancel()
	cancel()
	_ = bus.Publish(ctx, orderEvent())

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.HandlerCount())
}

func TestChangeFeed_FeedsAreIndependent(t *testing.T) {
	busA := NewInMemoryEventBus(zap.NewNop())
	busB := NewInMemoryEventBus(zap.NewNop())

	var gotA, gotB int
	defer NewChangeFeed(busA).Subscribe(marketplace.TableOrders, func(context.Context, *marketplace.ChangeEvent) { gotA++ })()
	defer NewChangeFeed(busB).Subscribe(marketplace.TableOrders, func(context.Context, *marketplace.ChangeEvent) { gotB++ })()

	_ = busA.Publish(context.Background(), orderEvent())
	assert.Equal(t, 1, gotA)
	assert.Equal(t, 0, gotB)
}
