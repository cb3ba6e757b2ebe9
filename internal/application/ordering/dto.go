package ordering

import (
	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/google/uuid"
)

// PlaceOrderInput is a company's request to order a product
type PlaceOrderInput struct {
	ProductID uuid.UUID
	CompanyID string
	Quantity  int
	// OrderDate is a YYYY-MM-DD calendar date
	OrderDate string
	// IdempotencyKey is optional. Requests sharing a key create at most one order.
	IdempotencyKey string
}

// PlacementResult describes a placed (or replayed) order
type PlacementResult struct {
	Order  *marketplace.Order
	Supply *marketplace.Supply
	// Product is the product as committed, after the decrement. On a replay
	// it is the product as it stands now.
	Product *marketplace.Product
	// Replayed is true when the order already existed for the idempotency key
	Replayed bool
}

// Outcome labels used for metrics
const (
	OutcomePlaced   = "placed"
	OutcomeReplayed = "replayed"
)

// PlacementRecorder observes placement outcomes
type PlacementRecorder interface {
	RecordPlacement(outcome string, quantity int)
}
