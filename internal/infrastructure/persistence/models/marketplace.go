package models

import (
	"time"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for Product
type ProductModel struct {
	BaseModel
	FarmerID     string          `gorm:"type:varchar(64);not null;index"`
	Name         string          `gorm:"type:varchar(100);not null"`
	SupplyAmount int             `gorm:"not null;check:supply_amount >= 0"`
	StartDate    time.Time       `gorm:"type:date;not null"`
	EndDate      time.Time       `gorm:"type:date;not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Version      int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a Product
func (m *ProductModel) ToDomain() *marketplace.Product {
	return &marketplace.Product{
		BaseEntity:   m.BaseModel.ToDomain(),
		FarmerID:     m.FarmerID,
		Name:         m.Name,
		SupplyAmount: m.SupplyAmount,
		Window: marketplace.SupplyWindow{
			Start: marketplace.DateOf(m.StartDate.UTC()),
			End:   marketplace.DateOf(m.EndDate.UTC()),
		},
		UnitPrice: m.UnitPrice,
		Version:   m.Version,
	}
}

// FromDomain populates the model from a Product
func (m *ProductModel) FromDomain(p *marketplace.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.FarmerID = p.FarmerID
	m.Name = p.Name
	m.SupplyAmount = p.SupplyAmount
	m.StartDate = p.Window.Start.Time()
	m.EndDate = p.Window.End.Time()
	m.UnitPrice = p.UnitPrice
	m.Version = p.Version
}

// ProductModelFromDomain creates a model from a Product
func ProductModelFromDomain(p *marketplace.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// OrderModel is the persistence model for Order
type OrderModel struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyID string    `gorm:"type:varchar(64);not null;index"`
	Quantity  int       `gorm:"not null;check:quantity > 0"`
	OrderDate time.Time `gorm:"type:date;not null"`
	// IdempotencyKey is unique when present; NULL rows never collide
	IdempotencyKey *string         `gorm:"type:varchar(128);uniqueIndex"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the model to an Order
func (m *OrderModel) ToDomain() *marketplace.Order {
	o := &marketplace.Order{
		BaseEntity:  m.BaseModel.ToDomain(),
		ProductID:   m.ProductID,
		CompanyID:   m.CompanyID,
		Quantity:    m.Quantity,
		OrderDate:   marketplace.DateOf(m.OrderDate.UTC()),
		TotalAmount: m.TotalAmount,
	}
	if m.IdempotencyKey != nil {
		o.IdempotencyKey = *m.IdempotencyKey
	}
	return o
}

// FromDomain populates the model from an Order
func (m *OrderModel) FromDomain(o *marketplace.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.ProductID = o.ProductID
	m.CompanyID = o.CompanyID
	m.Quantity = o.Quantity
	m.OrderDate = o.OrderDate.Time()
	m.TotalAmount = o.TotalAmount
	m.IdempotencyKey = nil
	if o.IdempotencyKey != "" {
		key := o.IdempotencyKey
		m.IdempotencyKey = &key
	}
}

// OrderModelFromDomain creates a model from an Order
func OrderModelFromDomain(o *marketplace.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// SupplyModel is the persistence model for Supply
type SupplyModel struct {
	BaseModel
	OrderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	FarmerID   string    `gorm:"type:varchar(64);not null;index"`
	Quantity   int       `gorm:"not null;check:quantity > 0"`
	SupplyDate time.Time `gorm:"type:date;not null"`
	TextLog    string    `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (SupplyModel) TableName() string {
	return "supplies"
}

// ToDomain converts the model to a Supply
func (m *SupplyModel) ToDomain() *marketplace.Supply {
	return &marketplace.Supply{
		BaseEntity: m.BaseModel.ToDomain(),
		OrderID:    m.OrderID,
		ProductID:  m.ProductID,
		FarmerID:   m.FarmerID,
		Quantity:   m.Quantity,
		SupplyDate: marketplace.DateOf(m.SupplyDate.UTC()),
		TextLog:    m.TextLog,
	}
}

// SupplyModelFromDomain creates a model from a Supply
func SupplyModelFromDomain(s *marketplace.Supply) *SupplyModel {
	m := &SupplyModel{
		OrderID:    s.OrderID,
		ProductID:  s.ProductID,
		FarmerID:   s.FarmerID,
		Quantity:   s.Quantity,
		SupplyDate: s.SupplyDate.Time(),
		TextLog:    s.TextLog,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// FeedbackModel is the persistence model for Feedback. Rows are never updated.
type FeedbackModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index:idx_feedbacks_order_created,priority:1"`
	SenderType string    `gorm:"type:varchar(16);not null"`
	Message    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null;index:idx_feedbacks_order_created,priority:2"`
}

// TableName returns the table name for GORM
func (FeedbackModel) TableName() string {
	return "feedbacks"
}

// ToDomain converts the model to a Feedback
func (m *FeedbackModel) ToDomain() *marketplace.Feedback {
	return &marketplace.Feedback{
		ID:         m.ID,
		OrderID:    m.OrderID,
		SenderType: marketplace.SenderType(m.SenderType),
		Message:    m.Message,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

// FeedbackModelFromDomain creates a model from a Feedback
func FeedbackModelFromDomain(f *marketplace.Feedback) *FeedbackModel {
	return &FeedbackModel{
		ID:         f.ID,
		OrderID:    f.OrderID,
		SenderType: string(f.SenderType),
		Message:    f.Message,
		CreatedAt:  f.CreatedAt,
	}
}

// AllModels lists every model for AutoMigrate in tests
func AllModels() []any {
	return []any{&ProductModel{}, &OrderModel{}, &SupplyModel{}, &FeedbackModel{}}
}
