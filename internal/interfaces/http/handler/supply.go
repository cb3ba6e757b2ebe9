package handler

import (
	catalogapp "github.com/comufarm/backend/internal/application/catalog"
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// SupplyHandler serves a farmer's supply log
type SupplyHandler struct {
	BaseHandler
	catalog *catalogapp.Service
}

// NewSupplyHandler creates a new SupplyHandler
func NewSupplyHandler(catalog *catalogapp.Service) *SupplyHandler {
	return &SupplyHandler{catalog: catalog}
}

// List godoc
// @ID           listSupplies
// @Summary      List the farmer's supply log
// @Tags         supplies
// @Produce      json
// @Param        limit query int false "Maximum entries" default(100)
// @Success      200 {object} APIResponse[[]SupplyResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /supplies [get]
func (h *SupplyHandler) List(c *gin.Context) {
	party, ok := h.party(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		h.Error(c, shared.CodeValidation, "Limit must be an integer")
		return
	}

	items, err := h.catalog.ListSupplies(c.Request.Context(), party, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSupplyResponses(items))
}

// Export godoc
// @ID           exportSupplies
// @Summary      Export the supply log
// @Description  Writes the farmer's supply log as a text file and returns a temporary download link
// @Tags         supplies
// @Produce      json
// @Success      201 {object} APIResponse[ExportResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /supplies/export [post]
func (h *SupplyHandler) Export(c *gin.Context) {
	party, ok := h.party(c)
	if !ok {
		return
	}

	result, err := h.catalog.ExportSupplyLog(c.Request.Context(), party)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ExportResponse{
		StorageKey: result.StorageKey,
		URL:        result.URL,
		ExpiresAt:  result.ExpiresAt,
		Lines:      result.Lines,
	})
}
