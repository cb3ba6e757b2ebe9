package handler

import (
	catalogapp "github.com/comufarm/backend/internal/application/catalog"
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/comufarm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	BaseHandler
	catalog *catalogapp.Service
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog *catalogapp.Service) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// CreateProductRequest is a farmer's new offer
// @Description Request body for registering a product
type CreateProductRequest struct {
	Name         string `json:"product_name" binding:"required,max=100" example:"감자"`
	SupplyAmount int    `json:"supply_amount" binding:"required,gt=0" example:"500"`
	StartDate    string `json:"start_date" binding:"required,isodate" example:"2024-06-01"`
	EndDate      string `json:"end_date" binding:"required,isodate" example:"2024-06-30"`
	UnitPrice    string `json:"unit_price" example:"1500.50"`
}

// CheckOrderResponse says whether an order could be placed right now
// @Description Result of a dry-run order validation
type CheckOrderResponse struct {
	Orderable bool   `json:"orderable" example:"false"`
	Code      string `json:"code,omitempty" example:"OUT_OF_WINDOW"`
	Message   string `json:"message,omitempty" example:"Requested date is outside the supply window"`
}

// Create godoc
// @ID           createProduct
// @Summary      Register a product
// @Description  A farmer registers a product with its stock and supply window
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body CreateProductRequest true "Product registration request"
// @Success      201 {object} APIResponse[ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	party, ok := h.party(c)
	if !ok {
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.DescribeBindingError(err))
		return
	}

	product, err := h.catalog.RegisterProduct(c.Request.Context(), party, catalogapp.RegisterProductInput{
		Name:         req.Name,
		SupplyAmount: req.SupplyAmount,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		UnitPrice:    req.UnitPrice,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductResponse(product))
}

// GetByID godoc
// @ID           getProduct
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "product")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  Products newest first, optionally narrowed to one farmer
// @Tags         products
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        farmer_id query string false "Only this farmer's products"
// @Success      200 {object} APIResponse[[]ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	query, ok := h.listQuery(c)
	if !ok {
		return
	}
	query.FarmerID = c.Query("farmer_id")

	page, err := h.catalog.ListProducts(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toProductResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// ListAvailable godoc
// @ID           listAvailableProducts
// @Summary      List orderable products
// @Description  Products with stock left, sorted by name
// @Tags         products
// @Produce      json
// @Success      200 {object} APIResponse[[]ProductResponse]
// @Security     BearerAuth
// @Router       /products/available [get]
func (h *ProductHandler) ListAvailable(c *gin.Context) {
	items, err := h.catalog.ListAvailable(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponses(items))
}

// CheckOrder godoc
// @ID           checkProductOrder
// @Summary      Check whether an order would be accepted
// @Description  Runs order validation without placing anything
// @Tags         products
// @Produce      json
// @Param        id         path  string true "Product ID"
// @Param        quantity   query int    true "Quantity"
// @Param        order_date query string true "Order date (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[CheckOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/check [get]
func (h *ProductHandler) CheckOrder(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "product")
	if !ok {
		return
	}
	quantity, ok := queryInt(c, "quantity", 0)
	if !ok {
		h.Error(c, shared.CodeValidation, "Quantity must be an integer")
		return
	}

	err := h.catalog.CheckOrder(c.Request.Context(), id, quantity, c.Query("order_date"))
	switch shared.CodeOf(err) {
	case "":
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, CheckOrderResponse{Orderable: true})
	case shared.CodeNotFound, shared.CodeOutOfWindow, shared.CodeInsufficientStock:
		h.Success(c, CheckOrderResponse{Code: shared.CodeOf(err), Message: err.Error()})
	default:
		h.HandleError(c, err)
	}
}

func (h *BaseHandler) listQuery(c *gin.Context) (catalogapp.ListQuery, bool) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		h.Error(c, shared.CodeValidation, "Page must be an integer")
		return catalogapp.ListQuery{}, false
	}
	size, ok := queryInt(c, "page_size", 20)
	if !ok {
		h.Error(c, shared.CodeValidation, "Page size must be an integer")
		return catalogapp.ListQuery{}, false
	}
	return catalogapp.ListQuery{Page: page, PageSize: size}, true
}
