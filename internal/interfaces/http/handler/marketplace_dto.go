package handler

import (
	"time"

	catalogapp "github.com/comufarm/backend/internal/application/catalog"
	"github.com/comufarm/backend/internal/application/ordering"
	"github.com/comufarm/backend/internal/domain/marketplace"
)

// ProductResponse is a product as returned by the API
// @Description A farmer's offer
type ProductResponse struct {
	ID           string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	FarmerID     string    `json:"farmer_id" example:"farmer_test"`
	Name         string    `json:"product_name" example:"감자"`
	SupplyAmount int       `json:"supply_amount" example:"500"`
	StartDate    string    `json:"start_date" example:"2024-06-01"`
	EndDate      string    `json:"end_date" example:"2024-06-30"`
	UnitPrice    string    `json:"unit_price" example:"1500.50"`
	Available    bool      `json:"available" example:"true"`
	Version      int       `json:"version" example:"3"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OrderResponse is an order as returned by the API
// @Description A company's accepted order
type OrderResponse struct {
	ID             string    `json:"id" example:"7a1c3e5f-0b2d-4f6a-8c9e-1d3f5a7b9c0e"`
	ProductID      string    `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProductName    string    `json:"product_name,omitempty" example:"감자"`
	CompanyID      string    `json:"company_id" example:"company_test"`
	Quantity       int       `json:"quantity" example:"40"`
	OrderDate      string    `json:"order_date" example:"2024-06-15"`
	TotalAmount    string    `json:"total_amount" example:"60020.00"`
	IdempotencyKey string    `json:"idempotency_key,omitempty" example:"8f14e45f-ceea-467f"`
	CreatedAt      time.Time `json:"created_at"`
}

// SupplyResponse is a supply log entry
// @Description What a farmer owes for one order
type SupplyResponse struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	ProductID  string    `json:"product_id"`
	FarmerID   string    `json:"farmer_id" example:"farmer_test"`
	Quantity   int       `json:"quantity" example:"40"`
	SupplyDate string    `json:"supply_date" example:"2024-06-15"`
	TextLog    string    `json:"text_log" example:"감자 40(kg) / 2024-06-15"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackResponse is one message of an order thread
// @Description A feedback message
type FeedbackResponse struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	SenderType string    `json:"sender_type" example:"company"`
	Message    string    `json:"message" example:"Please deliver before noon"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlaceOrderResponse is the outcome of a placement
// @Description A placed or replayed order
type PlaceOrderResponse struct {
	Order   OrderResponse    `json:"order"`
	Supply  *SupplyResponse  `json:"supply,omitempty"`
	Product *ProductResponse `json:"product,omitempty"`
	// Replayed is true when the idempotency key matched an earlier order
	Replayed bool `json:"replayed"`
}

// ExportResponse points at an exported supply log file
// @Description Temporary link to a supply log export
type ExportResponse struct {
	StorageKey string    `json:"storage_key" example:"supply-logs/farmer_test/20240615T090000Z.txt"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
	Lines      int       `json:"lines" example:"12"`
}

func toProductResponse(p *marketplace.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		FarmerID:     p.FarmerID,
		Name:         p.Name,
		SupplyAmount: p.SupplyAmount,
		StartDate:    p.Window.Start.String(),
		EndDate:      p.Window.End.String(),
		UnitPrice:    p.UnitPrice.StringFixed(2),
		Available:    p.IsAvailable(),
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toProductResponses(items []marketplace.Product) []ProductResponse {
	out := make([]ProductResponse, len(items))
	for i := range items {
		out[i] = toProductResponse(&items[i])
	}
	return out
}

func toOrderResponse(o *marketplace.Order, productName string) OrderResponse {
	return OrderResponse{
		ID:             o.ID.String(),
		ProductID:      o.ProductID.String(),
		ProductName:    productName,
		CompanyID:      o.CompanyID,
		Quantity:       o.Quantity,
		OrderDate:      o.OrderDate.String(),
		TotalAmount:    o.TotalAmount.StringFixed(2),
		IdempotencyKey: o.IdempotencyKey,
		CreatedAt:      o.CreatedAt,
	}
}

func toOrderViews(items []catalogapp.OrderView) []OrderResponse {
	out := make([]OrderResponse, len(items))
	for i := range items {
		out[i] = toOrderResponse(&items[i].Order, items[i].ProductName)
	}
	return out
}

func toSupplyResponse(s *marketplace.Supply) SupplyResponse {
	return SupplyResponse{
		ID:         s.ID.String(),
		OrderID:    s.OrderID.String(),
		ProductID:  s.ProductID.String(),
		FarmerID:   s.FarmerID,
		Quantity:   s.Quantity,
		SupplyDate: s.SupplyDate.String(),
		TextLog:    s.TextLog,
		CreatedAt:  s.CreatedAt,
	}
}

func toSupplyResponses(items []marketplace.Supply) []SupplyResponse {
	out := make([]SupplyResponse, len(items))
	for i := range items {
		out[i] = toSupplyResponse(&items[i])
	}
	return out
}

func toFeedbackResponse(f *marketplace.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:         f.ID.String(),
		OrderID:    f.OrderID.String(),
		SenderType: f.SenderType.String(),
		Message:    f.Message,
		CreatedAt:  f.CreatedAt,
	}
}

func toPlaceOrderResponse(r *ordering.PlacementResult) PlaceOrderResponse {
	resp := PlaceOrderResponse{
		Order:    toOrderResponse(r.Order, ""),
		Replayed: r.Replayed,
	}
	if r.Supply != nil {
		s := toSupplyResponse(r.Supply)
		resp.Supply = &s
	}
	if r.Product != nil {
		p := toProductResponse(r.Product)
		resp.Product = &p
		resp.Order.ProductName = r.Product.Name
	}
	return resp
}
