package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevani/pos-api/internal/application/service"
	"github.com/sanjeevani/pos-api/internal/presentation/http/dto/response"
)

// ReceiptHandler handles receipt printing endpoints
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// PrintInvoice handles POST /billing/invoices/:id/print
func (h *ReceiptHandler) PrintInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.receiptService.PrintInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed", nil)
}

// PrinterStatus handles GET /printer/status
func (h *ReceiptHandler) PrinterStatus(c *gin.Context) {
	response.OK(c, "Printer status", gin.H{
		"connected": h.receiptService.PrinterConnected(),
	})
}
