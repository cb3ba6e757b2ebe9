package marketplace

import "context"

// ChangeHandler receives change events for a subscribed table
type ChangeHandler func(ctx context.Context, event *ChangeEvent)

// CancelFunc ends a subscription. Calling it more than once is harmless.
type CancelFunc func()

// ChangeSubscriber delivers table change events to registered handlers.
// Delivery is best effort with no ordering across tables.
type ChangeSubscriber interface {
	Subscribe(table Table, handler ChangeHandler) CancelFunc
}
