package marketplace

import (
	"fmt"

	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Supply is the fulfilment log entry written with each placed order
type Supply struct {
	shared.BaseEntity
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	FarmerID   string
	Quantity   int
	SupplyDate Date
	TextLog    string
}

// NewSupply records that product's farmer owes order's quantity on the
// order date.
func NewSupply(product *Product, order *Order) *Supply {
	return &Supply{
		BaseEntity: shared.NewBaseEntityAt(order.CreatedAt),
		OrderID:    order.ID,
		ProductID:  product.ID,
		FarmerID:   product.FarmerID,
		Quantity:   order.Quantity,
		SupplyDate: order.OrderDate,
		TextLog:    SupplyLogLine(product.Name, order.Quantity, order.OrderDate),
	}
}

// SupplyLogLine formats the human-readable log line, e.g. "감자 40(kg) / 2024-06-15"
func SupplyLogLine(productName string, quantity int, date Date) string {
	return fmt.Sprintf("%s %d(kg) / %s", productName, quantity, date)
}
