package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevani/pos-api/internal/application/service"
	"github.com/sanjeevani/pos-api/internal/presentation/http/dto/response"
)

// InventoryHandler handles product and batch lookup endpoints
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// SearchProducts handles GET /inventory/products/search?term=
func (h *InventoryHandler) SearchProducts(c *gin.Context) {
	products, err := h.inventoryService.SearchProducts(c.Request.Context(), c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Products retrieved", products)
}

// ListBatches handles GET /inventory/batches?productId=N
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Query("productId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "productId query parameter is required")
		return
	}

	batches, err := h.inventoryService.ListBatches(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batches retrieved", batches)
}
