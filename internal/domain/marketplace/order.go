package marketplace

import (
	"strings"
	"unicode"

	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxIdempotencyKeyLength bounds caller supplied idempotency keys
const MaxIdempotencyKeyLength = 128

// MaxOrderTotal is the largest total an order row can hold
var MaxOrderTotal = decimal.RequireFromString("999999999999.99")

// Order is a company's accepted request for a product. Orders are never
// updated after creation.
type Order struct {
	shared.BaseEntity
	ProductID      uuid.UUID
	CompanyID      string
	Quantity       int
	OrderDate      Date
	IdempotencyKey string
	TotalAmount    decimal.Decimal
}

// NewOrder creates an order for product. Stock and window checks belong to
// Validate; this constructor only guards the order's own fields.
func NewOrder(product *Product, companyID string, quantity int, date Date, idempotencyKey string) (*Order, error) {
	if product == nil || product.ID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product ID cannot be empty")
	}
	if strings.TrimSpace(companyID) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Company ID cannot be empty")
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order date is required")
	}
	if err := ValidateIdempotencyKey(idempotencyKey); err != nil {
		return nil, err
	}
	total := product.TotalFor(quantity)
	if total.GreaterThan(MaxOrderTotal) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order total cannot exceed 999999999999.99")
	}

	return &Order{
		BaseEntity:     shared.NewBaseEntity(),
		ProductID:      product.ID,
		CompanyID:      companyID,
		Quantity:       quantity,
		OrderDate:      date,
		IdempotencyKey: idempotencyKey,
		TotalAmount:    total,
	}, nil
}

// SameRequest reports whether a replayed request carries the same payload
// as the one that created this order.
func (o *Order) SameRequest(productID uuid.UUID, companyID string, quantity int, date Date) bool {
	return o.ProductID == productID &&
		o.CompanyID == companyID &&
		o.Quantity == quantity &&
		o.OrderDate.Equal(date)
}

// ValidateIdempotencyKey accepts an empty key (no idempotency) or a short
// printable token.
func ValidateIdempotencyKey(key string) error {
	if key == "" {
		return nil
	}
	if len(key) > MaxIdempotencyKeyLength {
		return shared.NewDomainError(shared.CodeValidation, "Idempotency key cannot exceed 128 characters")
	}
	for _, r := range key {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return shared.NewDomainError(shared.CodeValidation, "Idempotency key must be printable and contain no spaces")
		}
	}
	return nil
}
