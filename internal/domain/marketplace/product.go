package marketplace

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	maxProductNameLength = 100

	// MaxSupplyAmount is the largest stock a product row can hold
	MaxSupplyAmount = math.MaxInt32
	// PriceScale is the number of decimal places kept for money
	PriceScale = 2
)

// MaxUnitPrice is the largest unit price a product row can hold
var MaxUnitPrice = decimal.RequireFromString("9999999999.99")

// SupplyWindow is the inclusive range of dates a product can be ordered for
type SupplyWindow struct {
	Start Date
	End   Date
}

// NewSupplyWindow builds a window, rejecting an end before the start
func NewSupplyWindow(start, end Date) (SupplyWindow, error) {
	if start.IsZero() || end.IsZero() {
		return SupplyWindow{}, shared.NewDomainError(shared.CodeValidation, "Supply window needs both a start and an end date")
	}
	if end.Before(start) {
		return SupplyWindow{}, shared.NewDomainError(shared.CodeValidation, "Supply window end date cannot be before its start date")
	}
	return SupplyWindow{Start: start, End: end}, nil
}

// Contains reports whether d lies within the window, both ends included
func (w SupplyWindow) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Product is a farmer's offer: a stock of goods available inside a window.
// SupplyAmount only ever goes down through order placement.
type Product struct {
	shared.BaseEntity
	FarmerID     string
	Name         string
	SupplyAmount int
	Window       SupplyWindow
	UnitPrice    decimal.Decimal
	Version      int
}

// NewProduct creates a product registered by a farmer
func NewProduct(farmerID, name string, supplyAmount int, window SupplyWindow, unitPrice decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(farmerID) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Farmer ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxProductNameLength {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product name cannot exceed 100 characters")
	}
	if supplyAmount <= 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Supply amount must be positive")
	}
	if supplyAmount > MaxSupplyAmount {
		return nil, shared.NewDomainError(shared.CodeValidation, "Supply amount cannot exceed 2147483647")
	}
	if _, err := NewSupplyWindow(window.Start, window.End); err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Unit price cannot be negative")
	}
	if unitPrice.GreaterThan(MaxUnitPrice) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Unit price cannot exceed 9999999999.99")
	}
	if !unitPrice.Equal(unitPrice.Truncate(PriceScale)) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Unit price cannot have more than 2 decimal places")
	}

	return &Product{
		BaseEntity:   shared.NewBaseEntity(),
		FarmerID:     farmerID,
		Name:         name,
		SupplyAmount: supplyAmount,
		Window:       window,
		UnitPrice:    unitPrice,
		Version:      1,
	}, nil
}

// IsAvailable reports whether any stock remains
func (p *Product) IsAvailable() bool {
	return p.SupplyAmount > 0
}

// TotalFor returns the price of quantity units
func (p *Product) TotalFor(quantity int) decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
