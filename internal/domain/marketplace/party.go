package marketplace

import (
	"strings"

	"github.com/comufarm/backend/internal/domain/shared"
)

// Party is an authenticated participant: a company or a farmer
type Party struct {
	ID   string
	Role SenderType
}

// NewParty validates and builds a party
func NewParty(id string, role SenderType) (Party, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Party{}, shared.NewDomainError(shared.CodeUnauthorized, "Party ID is required")
	}
	if !role.IsValid() {
		return Party{}, shared.NewDomainError(shared.CodeUnauthorized, "Role must be company or farmer")
	}
	return Party{ID: id, Role: role}, nil
}

// IsCompany reports whether the party buys
func (p Party) IsCompany() bool {
	return p.Role == SenderCompany
}

// IsFarmer reports whether the party supplies
func (p Party) IsFarmer() bool {
	return p.Role == SenderFarmer
}

// CanAccessOrder reports whether the party is one of the order's two sides:
// the company that placed it or the farmer who owns the product.
func (p Party) CanAccessOrder(order *Order, product *Product) bool {
	switch p.Role {
	case SenderCompany:
		return order != nil && order.CompanyID == p.ID
	case SenderFarmer:
		return product != nil && product.FarmerID == p.ID
	}
	return false
}
