package marketplace

import (
	"context"

	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository persists products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	// FindAvailable returns products with remaining stock
	FindAvailable(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	// DecrementStock subtracts quantity only while the stored amount still
	// covers it. It returns false, without error, when the guard fails.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
}

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	FarmerID string
}

// OrderRepository persists orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	Save(ctx context.Context, order *Order) error
}

// OrderFilter narrows order listings to one side of the marketplace
type OrderFilter struct {
	shared.Filter
	CompanyID string
	// FarmerID matches orders placed on the farmer's products
	FarmerID string
}

// SupplyRepository persists supply log entries
type SupplyRepository interface {
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Supply, error)
	// FindByFarmer returns the farmer's entries, newest first. An empty
	// farmerID returns every entry.
	FindByFarmer(ctx context.Context, farmerID string, limit int) ([]Supply, error)
	Save(ctx context.Context, supply *Supply) error
}

// FeedbackRepository persists order threads
type FeedbackRepository interface {
	Append(ctx context.Context, feedback *Feedback) error
	// FindByOrder returns the thread in creation order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Feedback, error)
}
