package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevani/pos-api/internal/application/service"
	"github.com/sanjeevani/pos-api/internal/domain/entity"
	"github.com/sanjeevani/pos-api/internal/domain/enum"
	"github.com/sanjeevani/pos-api/internal/domain/repository"
	"github.com/sanjeevani/pos-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBatchRepo struct {
	batches map[int64]*entity.ProductBatch
}

func (r *stubBatchRepo) Create(ctx context.Context, batch *entity.ProductBatch) error { return nil }

func (r *stubBatchRepo) GetByID(ctx context.Context, id int64) (*entity.ProductBatch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *stubBatchRepo) GetByIDs(ctx context.Context, ids []int64) ([]entity.ProductBatch, error) {
	var out []entity.ProductBatch
	for _, id := range ids {
		if b, ok := r.batches[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *stubBatchRepo) ListByProduct(ctx context.Context, productID int64) ([]entity.ProductBatch, error) {
	return nil, nil
}

func (r *stubBatchRepo) AtomicDecrementStock(ctx context.Context, decrements map[int64]int) ([]int64, error) {
	return nil, nil
}

func (r *stubBatchRepo) AtomicIncrementStock(ctx context.Context, increments map[int64]int) error {
	return nil
}

type stubCustomerRepo struct{}

func (stubCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	customer.ID = 1
	return nil
}
func (stubCustomerRepo) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	return nil, nil
}
func (stubCustomerRepo) GetByMobile(ctx context.Context, mobile string) (*entity.Customer, error) {
	return nil, nil
}
func (stubCustomerRepo) Update(ctx context.Context, customer *entity.Customer) error { return nil }
func (stubCustomerRepo) Delete(ctx context.Context, id int64) error                  { return nil }
func (stubCustomerRepo) Search(ctx context.Context, term string, limit int) ([]entity.Customer, error) {
	return nil, nil
}
func (stubCustomerRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	return nil, 0, nil
}

type stubInvoiceRepo struct {
	created []*entity.Invoice
}

func (r *stubInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	invoice.ID = int64(len(r.created) + 1)
	r.created = append(r.created, invoice)
	return nil
}
func (r *stubInvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	return nil, nil
}
func (r *stubInvoiceRepo) GetWithDetails(ctx context.Context, id int64) (*entity.Invoice, error) {
	return nil, nil
}
func (r *stubInvoiceRepo) List(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	return nil, 0, nil
}

func newTestRouter(t *testing.T, batches ...*entity.ProductBatch) (*gin.Engine, *stubInvoiceRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	batchRepo := &stubBatchRepo{batches: make(map[int64]*entity.ProductBatch)}
	for _, b := range batches {
		batchRepo.batches[b.ID] = b
	}
	invoiceRepo := &stubInvoiceRepo{}

	sessions := service.NewSessionRegistry(service.SessionRegistryConfig{
		CleanupInterval: time.Hour,
		SessionTTL:      time.Hour,
	})
	t.Cleanup(sessions.Stop)

	billingService := service.NewBillingService(sessions, batchRepo, stubCustomerRepo{}, invoiceRepo)
	h := NewBillingHandler(billingService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", int64(1))
		c.Set("user_role", enum.RoleStaff)
	})

	sessionGroup := router.Group("/billing/session")
	{
		sessionGroup.GET("", h.GetSession)
		sessionGroup.POST("/items", h.AddItem)
		sessionGroup.PUT("/items/:batchId", h.UpdateItemQty)
		sessionGroup.DELETE("/items/:batchId", h.RemoveItem)
		sessionGroup.POST("/payments", h.AddPayment)
		sessionGroup.DELETE("/payments/:index", h.RemovePayment)
		sessionGroup.DELETE("", h.ResetSession)
		sessionGroup.POST("/submit", h.SubmitSession)
	}

	return router, invoiceRepo
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func sellableBatch(id int64, stock int) *entity.ProductBatch {
	return &entity.ProductBatch{
		ID:           id,
		ProductID:    10,
		BatchNo:      "BN-001",
		ExpiryDate:   time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC),
		MRP:          35000,
		DP:           30000,
		SP:           4,
		CurrentStock: stock,
		Product:      entity.Product{ID: 10, Name: "Amla Juice"},
	}
}

func TestBillingFlowOverHTTP(t *testing.T) {
	router, invoiceRepo := newTestRouter(t, sellableBatch(1, 5))

	// Add an item.
	w := performJSON(t, router, http.MethodPost, "/billing/session/items", gin.H{"productBatchId": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, 300.0, data["totalAmount"])

	// Bump the quantity.
	w = performJSON(t, router, http.MethodPut, "/billing/session/items/1", gin.H{"quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, 600.0, data["totalAmount"])
	assert.Equal(t, float64(8), data["totalSp"])

	// Record a payment in rupees.
	w = performJSON(t, router, http.MethodPost, "/billing/session/payments", gin.H{"mode": "CASH", "amount": 600})
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, 0.0, data["dueAmount"])

	// Submit.
	w = performJSON(t, router, http.MethodPost, "/billing/session/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, invoiceRepo.created, 1)
	assert.Equal(t, enum.InvoiceStatusComplete, invoiceRepo.created[0].Status)

	// Session is empty again.
	w = performJSON(t, router, http.MethodGet, "/billing/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, items)
}

func TestAddItemBeyondStockReturns422(t *testing.T) {
	router, _ := newTestRouter(t, sellableBatch(1, 1))

	w := performJSON(t, router, http.MethodPost, "/billing/session/items", gin.H{"productBatchId": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(t, router, http.MethodPost, "/billing/session/items", gin.H{"productBatchId": 1})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var envelope struct {
		Success bool   `json:"success"`
		Reason  string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "CAPACITY_EXCEEDED", envelope.Reason)
}

func TestAddItemUnknownBatchReturns404(t *testing.T) {
	router, _ := newTestRouter(t)

	w := performJSON(t, router, http.MethodPost, "/billing/session/items", gin.H{"productBatchId": 77})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOverpaymentReturns422(t *testing.T) {
	router, _ := newTestRouter(t, sellableBatch(1, 5))

	w := performJSON(t, router, http.MethodPost, "/billing/session/items", gin.H{"productBatchId": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(t, router, http.MethodPost, "/billing/session/payments", gin.H{"mode": "CASH", "amount": 1000})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var envelope struct {
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "OVERPAYMENT", envelope.Reason)
}

func TestRemovePaymentOutOfRangeReturns422(t *testing.T) {
	router, _ := newTestRouter(t, sellableBatch(1, 5))

	w := performJSON(t, router, http.MethodDelete, "/billing/session/payments/0", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestResetClearsSession(t *testing.T) {
	router, _ := newTestRouter(t, sellableBatch(1, 5))

	w := performJSON(t, router, http.MethodPost, "/billing/session/items", gin.H{"productBatchId": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(t, router, http.MethodDelete, "/billing/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, 0.0, data["totalAmount"])
}
