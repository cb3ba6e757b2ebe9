package catalog

import (
	"time"

	"github.com/comufarm/backend/internal/domain/marketplace"
)

// RegisterProductInput is a farmer's new offer
type RegisterProductInput struct {
	Name         string
	SupplyAmount int
	StartDate    string
	EndDate      string
	// UnitPrice is a decimal string; empty means unpriced
	UnitPrice string
}

// ListQuery is a page request
type ListQuery struct {
	Page     int
	PageSize int
	// FarmerID narrows products to one farmer
	FarmerID string
}

// OrderView is an order with its product's name
type OrderView struct {
	marketplace.Order
	ProductName string
}

// ExportResult points at an exported supply log
type ExportResult struct {
	StorageKey string
	URL        string
	ExpiresAt  time.Time
	Lines      int
}
