package marketplace

import (
	"fmt"

	"github.com/comufarm/backend/internal/domain/shared"
)

// Validate decides whether quantity units of product can be ordered for
// date. It is pure and is used both by the pre-submit check and by
// placement itself, so the two never disagree.
//
// Failures are reported in a fixed order: an unknown product, a
// non-positive quantity, a date outside the window, then short stock.
func Validate(product *Product, quantity int, date Date) error {
	if product == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Product not found")
	}
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	if date.IsZero() {
		return shared.NewDomainError(shared.CodeValidation, "Order date is required")
	}
	if !product.Window.Contains(date) {
		return shared.NewDomainError(shared.CodeOutOfWindow,
			fmt.Sprintf("Date %s is outside the supply window %s..%s", date, product.Window.Start, product.Window.End))
	}
	if quantity > product.SupplyAmount {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Requested %d but only %d available", quantity, product.SupplyAmount))
	}
	return nil
}

// ValidateQuantity rejects non-positive order quantities
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError(shared.CodeValidation, "Quantity must be positive")
	}
	return nil
}
