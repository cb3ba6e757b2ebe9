package handler

import (
	"strings"

	catalogapp "github.com/comufarm/backend/internal/application/catalog"
	"github.com/comufarm/backend/internal/application/ordering"
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/comufarm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles order placement and order listings
type OrderHandler struct {
	BaseHandler
	placement *ordering.PlacementService
	catalog   *catalogapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(placement *ordering.PlacementService, catalog *catalogapp.Service) *OrderHandler {
	return &OrderHandler{placement: placement, catalog: catalog}
}

// PlaceOrderRequest is a company's order
// @Description Request body for placing an order
type PlaceOrderRequest struct {
	ProductID string `json:"product_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity  int    `json:"quantity" example:"40"`
	OrderDate string `json:"order_date" binding:"required" example:"2024-06-15"`
	// IdempotencyKey may also be sent as the Idempotency-Key header
	IdempotencyKey string `json:"idempotency_key,omitempty" example:"8f14e45f-ceea-467f"`
}

// Place godoc
// @ID           placeOrder
// @Summary      Place an order
// @Description  Validates the order, then commits the order, its supply entry and the stock decrement together.
// @Description  Sending the same Idempotency-Key again returns the original order with 200 and replayed=true.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body PlaceOrderRequest true "Order request"
// @Success      201 {object} APIResponse[PlaceOrderResponse]
// @Success      200 {object} APIResponse[PlaceOrderResponse] "Replayed order"
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "OUT_OF_WINDOW or INSUFFICIENT_STOCK"
// @Failure      503 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	party, ok := h.party(c)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.DescribeBindingError(err))
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.Error(c, shared.CodeValidation, "Invalid product ID format")
		return
	}

	key := strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader))
	bodyKey := strings.TrimSpace(req.IdempotencyKey)
	switch {
	case key == "":
		key = bodyKey
	case bodyKey != "" && bodyKey != key:
		h.Error(c, shared.CodeValidation, "Idempotency-Key header and idempotency_key field differ")
		return
	}

	result, err := h.placement.Place(c.Request.Context(), ordering.PlaceOrderInput{
		ProductID:      productID,
		CompanyID:      party.ID,
		Quantity:       req.Quantity,
		OrderDate:      req.OrderDate,
		IdempotencyKey: key,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Replayed {
		h.Success(c, toPlaceOrderResponse(result))
		return
	}
	h.Created(c, toPlaceOrderResponse(result))
}

// List godoc
// @ID           listOrders
// @Summary      List the caller's orders
// @Description  Companies see orders they placed; farmers see orders on their products
// @Tags         orders
// @Produce      json
// @Param        page      query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]OrderResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	party, ok := h.party(c)
	if !ok {
		return
	}
	query, ok := h.listQuery(c)
	if !ok {
		return
	}

	page, err := h.catalog.ListOrders(c.Request.Context(), party, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toOrderViews(page.Items), page.Total, page.Page, page.PageSize)
}
