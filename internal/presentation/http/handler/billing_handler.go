package handler

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevani/pos-api/internal/application/service"
	"github.com/sanjeevani/pos-api/internal/domain/billing"
	"github.com/sanjeevani/pos-api/internal/domain/enum"
	"github.com/sanjeevani/pos-api/internal/domain/repository"
	"github.com/sanjeevani/pos-api/internal/presentation/http/dto/request"
	"github.com/sanjeevani/pos-api/internal/presentation/http/dto/response"
	"github.com/sanjeevani/pos-api/pkg/apperror"
	"github.com/sanjeevani/pos-api/pkg/pagination"
)

// BillingHandler handles billing session and invoice endpoints
type BillingHandler struct {
	billingService *service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// mapLedgerError translates ledger rejections into 422 responses with a
// stable reason code. Anything else passes through untouched.
func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, billing.ErrCapacityExceeded):
		return apperror.NewRejection("CAPACITY_EXCEEDED", "Requested quantity exceeds available stock")
	case errors.Is(err, billing.ErrInvalidQuantity):
		return apperror.NewRejection("INVALID_QUANTITY", "Quantity must be at least 1")
	case errors.Is(err, billing.ErrUnknownBatch):
		return apperror.NewRejection("UNKNOWN_BATCH", "Batch is not in the cart")
	case errors.Is(err, billing.ErrUnknownPaymentIndex):
		return apperror.NewRejection("UNKNOWN_PAYMENT", "No payment at that position")
	case errors.Is(err, billing.ErrInvalidAmount):
		return apperror.NewRejection("INVALID_AMOUNT", "Payment amount must be positive")
	case errors.Is(err, billing.ErrOverpayment):
		return apperror.NewRejection("OVERPAYMENT", "Payment exceeds the due amount")
	default:
		return err
	}
}

// paise converts a rupee amount from the wire into paise
func paise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}

// GetSession handles GET /billing/session
func (h *BillingHandler) GetSession(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	response.OK(c, "Session retrieved", h.billingService.GetSession(userID))
}

// AddItem handles POST /billing/session/items
func (h *BillingHandler) AddItem(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.billingService.AddItem(c.Request.Context(), userID, req.ProductBatchID)
	if err != nil {
		response.Error(c, mapLedgerError(err))
		return
	}

	response.OK(c, "Item added", snap)
}

// UpdateItemQty handles PUT /billing/session/items/:batchId
func (h *BillingHandler) UpdateItemQty(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	batchID, err := strconv.ParseInt(c.Param("batchId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid batch ID")
		return
	}

	var req request.UpdateItemQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.billingService.UpdateItemQty(userID, batchID, req.Quantity)
	if err != nil {
		response.Error(c, mapLedgerError(err))
		return
	}

	response.OK(c, "Quantity updated", snap)
}

// RemoveItem handles DELETE /billing/session/items/:batchId
func (h *BillingHandler) RemoveItem(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	batchID, err := strconv.ParseInt(c.Param("batchId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid batch ID")
		return
	}

	snap, err := h.billingService.RemoveItem(userID, batchID)
	if err != nil {
		response.Error(c, mapLedgerError(err))
		return
	}

	response.OK(c, "Item removed", snap)
}

// SetCustomer handles PUT /billing/session/customer
func (h *BillingHandler) SetCustomer(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req request.SetCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.billingService.SetCustomer(c.Request.Context(), userID, &service.SetSessionCustomerInput{
		CustomerID: req.CustomerID,
		Name:       req.Name,
		Mobile:     req.Mobile,
		AscplID:    req.AscplID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer set", snap)
}

// DetachCustomer handles DELETE /billing/session/customer
func (h *BillingHandler) DetachCustomer(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	response.OK(c, "Customer detached", h.billingService.DetachCustomer(userID))
}

// SetReference handles PUT /billing/session/reference
func (h *BillingHandler) SetReference(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req request.SetReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	response.OK(c, "Reference set", h.billingService.SetReferenceParty(userID, req.AscplID))
}

// ClearReference handles DELETE /billing/session/reference
func (h *BillingHandler) ClearReference(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	response.OK(c, "Reference cleared", h.billingService.SetReferenceParty(userID, ""))
}

// AddPayment handles POST /billing/session/payments
func (h *BillingHandler) AddPayment(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req request.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.billingService.AddPayment(userID, enum.PaymentMode(req.Mode), paise(req.Amount), req.RefNo)
	if err != nil {
		response.Error(c, mapLedgerError(err))
		return
	}

	response.OK(c, "Payment recorded", snap)
}

// RemovePayment handles DELETE /billing/session/payments/:index
func (h *BillingHandler) RemovePayment(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Invalid payment index")
		return
	}

	snap, err := h.billingService.RemovePayment(userID, index)
	if err != nil {
		response.Error(c, mapLedgerError(err))
		return
	}

	response.OK(c, "Payment removed", snap)
}

// ResetSession handles DELETE /billing/session
func (h *BillingHandler) ResetSession(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	response.OK(c, "Session reset", h.billingService.ResetSession(userID))
}

// SubmitSession handles POST /billing/session/submit
func (h *BillingHandler) SubmitSession(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	invoice, err := h.billingService.SubmitSession(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, mapLedgerError(err))
		return
	}

	response.Created(c, "Invoice created", invoice)
}

// CreateInvoice handles POST /billing/invoices
func (h *BillingHandler) CreateInvoice(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req request.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]service.CreateInvoiceItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateInvoiceItemInput{
			ProductBatchID: item.ProductBatchID,
			Quantity:       item.Quantity,
		})
	}

	invoice, err := h.billingService.CreateInvoice(c.Request.Context(), userID, &service.CreateInvoiceInput{
		CustomerID:       req.CustomerID,
		CustomerName:     req.CustomerName,
		Mobile:           req.Mobile,
		ReferenceAscplID: req.ReferenceAscplID,
		Items:            items,
		PaymentMode:      enum.PaymentMode(req.PaymentMode),
	})
	if err != nil {
		response.Error(c, mapLedgerError(err))
		return
	}

	response.Created(c, "Invoice created", invoice)
}

// GetInvoice handles GET /billing/invoices/:id
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.billingService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved", invoice)
}

// ListInvoices handles GET /billing/invoices
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	params := pagination.DefaultPagination()
	if err := c.ShouldBindQuery(params); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}

	filter := &repository.InvoiceFilterParams{
		Pagination: params,
		Search:     c.Query("search"),
	}

	if raw := c.Query("customerId"); raw != "" {
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		filter.CustomerID = &customerID
	}
	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "Invalid start date")
			return
		}
		filter.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "Invalid end date")
			return
		}
		// Include the whole end day
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}

	result, err := h.billingService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved", result)
}
