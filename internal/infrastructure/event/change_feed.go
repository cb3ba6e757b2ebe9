package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/domain/shared"
)

// ChangeFeed exposes table change events from a bus as per-table
// subscriptions. Each feed is an explicit value; nothing is registered globally.
type ChangeFeed struct {
	bus shared.EventSubscriber
}

// NewChangeFeed creates a change feed over bus
func NewChangeFeed(bus shared.EventSubscriber) *ChangeFeed {
	return &ChangeFeed{bus: bus}
}

// Subscribe calls handler for every insert, update or delete on table until
// the returned cancel func runs.
func (f *ChangeFeed) Subscribe(table marketplace.Table, handler marketplace.ChangeHandler) marketplace.CancelFunc {
	sub := &tableSubscription{table: table, handler: handler}
	f.bus.Subscribe(sub, marketplace.TableEventTypes(table)...)

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.cancelled.Store(true)
			f.bus.Unsubscribe(sub)
		})
	}
}

type tableSubscription struct {
	table     marketplace.Table
	handler   marketplace.ChangeHandler
	cancelled atomic.Bool
}

func (s *tableSubscription) Handle(ctx context.Context, event shared.DomainEvent) error {
	if s.cancelled.Load() {
		return nil
	}
	change, ok := event.(*marketplace.ChangeEvent)
	if !ok || change.Table != s.table {
		return nil
	}
	s.handler(ctx, change)
	return nil
}

func (s *tableSubscription) EventTypes() []string {
	return marketplace.TableEventTypes(s.table)
}

var _ marketplace.ChangeSubscriber = (*ChangeFeed)(nil)
