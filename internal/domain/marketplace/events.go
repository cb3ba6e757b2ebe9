package marketplace

import (
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Table names a stored collection whose changes can be observed
type Table string

const (
	TableProducts  Table = "products"
	TableOrders    Table = "orders"
	TableSupplies  Table = "supplies"
	TableFeedbacks Table = "feedbacks"
)

// AllTables lists every observable table
func AllTables() []Table {
	return []Table{TableProducts, TableOrders, TableSupplies, TableFeedbacks}
}

// IsValid checks if the table is observable
func (t Table) IsValid() bool {
	switch t {
	case TableProducts, TableOrders, TableSupplies, TableFeedbacks:
		return true
	}
	return false
}

// ParseTable converts a name into a Table
func ParseTable(name string) (Table, error) {
	t := Table(name)
	if !t.IsValid() {
		return "", shared.NewDomainError(shared.CodeValidation, "Unknown table: "+name)
	}
	return t, nil
}

// ChangeKind is the kind of row change
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEventType returns the bus event type for a change, e.g. "orders.insert"
func ChangeEventType(table Table, kind ChangeKind) string {
	return string(table) + "." + string(kind)
}

// TableEventTypes returns the event types of every change kind on table
func TableEventTypes(table Table) []string {
	return []string{
		ChangeEventType(table, ChangeInsert),
		ChangeEventType(table, ChangeUpdate),
		ChangeEventType(table, ChangeDelete),
	}
}

// ChangeEvent announces that a row of a table was inserted, updated or deleted
type ChangeEvent struct {
	shared.BaseDomainEvent
	Table  Table          `json:"table"`
	Kind   ChangeKind     `json:"kind"`
	Record map[string]any `json:"record"`
}

// NewChangeEvent creates a change event for the row identified by id
func NewChangeEvent(table Table, kind ChangeKind, id uuid.UUID, record map[string]any) *ChangeEvent {
	return &ChangeEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ChangeEventType(table, kind), string(table), id),
		Table:           table,
		Kind:            kind,
		Record:          record,
	}
}

// ProductChanged builds a change event for p
func ProductChanged(kind ChangeKind, p *Product) *ChangeEvent {
	return NewChangeEvent(TableProducts, kind, p.ID, map[string]any{
		"id":            p.ID.String(),
		"farmer_id":     p.FarmerID,
		"product_name":  p.Name,
		"supply_amount": p.SupplyAmount,
		"start_date":    p.Window.Start.String(),
		"end_date":      p.Window.End.String(),
		"unit_price":    p.UnitPrice.String(),
		"created_at":    p.CreatedAt,
		"updated_at":    p.UpdatedAt,
	})
}

// OrderInserted builds the insert event for o. The record carries the
// product's farmer so the supplying side can follow its orders.
func OrderInserted(o *Order, product *Product) *ChangeEvent {
	record := map[string]any{
		"id":           o.ID.String(),
		"product_id":   o.ProductID.String(),
		"company_id":   o.CompanyID,
		"quantity":     o.Quantity,
		"order_date":   o.OrderDate.String(),
		"total_amount": o.TotalAmount.String(),
		"created_at":   o.CreatedAt,
	}
	if product != nil {
		record["farmer_id"] = product.FarmerID
		record["product_name"] = product.Name
	}
	return NewChangeEvent(TableOrders, ChangeInsert, o.ID, record)
}

// SupplyInserted builds the insert event for s
func SupplyInserted(s *Supply) *ChangeEvent {
	return NewChangeEvent(TableSupplies, ChangeInsert, s.ID, map[string]any{
		"id":          s.ID.String(),
		"order_id":    s.OrderID.String(),
		"product_id":  s.ProductID.String(),
		"farmer_id":   s.FarmerID,
		"quantity":    s.Quantity,
		"supply_date": s.SupplyDate.String(),
		"text_log":    s.TextLog,
		"created_at":  s.CreatedAt,
	})
}

// FeedbackInserted builds the insert event for f
func FeedbackInserted(f *Feedback) *ChangeEvent {
	return NewChangeEvent(TableFeedbacks, ChangeInsert, f.ID, map[string]any{
		"id":          f.ID.String(),
		"order_id":    f.OrderID.String(),
		"sender_type": f.SenderType.String(),
		"message":     f.Message,
		"created_at":  f.CreatedAt,
	})
}
