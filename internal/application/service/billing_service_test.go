package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sanjeevani/pos-api/internal/domain/entity"
	"github.com/sanjeevani/pos-api/internal/domain/enum"
	"github.com/sanjeevani/pos-api/internal/domain/repository"
	"github.com/sanjeevani/pos-api/pkg/apperror"
	"github.com/sanjeevani/pos-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBatchRepo struct {
	batches     map[int64]*entity.ProductBatch
	failIDs     []int64
	decremented map[int64]int
	restored    map[int64]int
}

func newFakeBatchRepo(batches ...*entity.ProductBatch) *fakeBatchRepo {
	r := &fakeBatchRepo{
		batches:     make(map[int64]*entity.ProductBatch),
		decremented: make(map[int64]int),
		restored:    make(map[int64]int),
	}
	for _, b := range batches {
		r.batches[b.ID] = b
	}
	return r
}

func (r *fakeBatchRepo) Create(ctx context.Context, batch *entity.ProductBatch) error {
	r.batches[batch.ID] = batch
	return nil
}

func (r *fakeBatchRepo) GetByID(ctx context.Context, id int64) (*entity.ProductBatch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBatchRepo) GetByIDs(ctx context.Context, ids []int64) ([]entity.ProductBatch, error) {
	var out []entity.ProductBatch
	for _, id := range ids {
		if b, ok := r.batches[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) ListByProduct(ctx context.Context, productID int64) ([]entity.ProductBatch, error) {
	var out []entity.ProductBatch
	for _, b := range r.batches {
		if b.ProductID == productID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) AtomicDecrementStock(ctx context.Context, decrements map[int64]int) ([]int64, error) {
	if len(r.failIDs) > 0 {
		return r.failIDs, nil
	}
	for id, qty := range decrements {
		r.decremented[id] += qty
		r.batches[id].CurrentStock -= qty
	}
	return nil, nil
}

func (r *fakeBatchRepo) AtomicIncrementStock(ctx context.Context, increments map[int64]int) error {
	for id, qty := range increments {
		r.restored[id] += qty
		r.batches[id].CurrentStock += qty
	}
	return nil
}

type fakeCustomerRepo struct {
	byID     map[int64]*entity.Customer
	byMobile map[string]*entity.Customer
	nextID   int64
}

func newFakeCustomerRepo(customers ...*entity.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{
		byID:     make(map[int64]*entity.Customer),
		byMobile: make(map[string]*entity.Customer),
		nextID:   100,
	}
	for _, c := range customers {
		r.byID[c.ID] = c
		r.byMobile[c.Mobile] = c
	}
	return r
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	r.nextID++
	customer.ID = r.nextID
	r.byID[customer.ID] = customer
	r.byMobile[customer.Mobile] = customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	return r.byID[id], nil
}

func (r *fakeCustomerRepo) GetByMobile(ctx context.Context, mobile string) (*entity.Customer, error) {
	return r.byMobile[mobile], nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, customer *entity.Customer) error { return nil }
func (r *fakeCustomerRepo) Delete(ctx context.Context, id int64) error                  { return nil }

func (r *fakeCustomerRepo) Search(ctx context.Context, term string, limit int) ([]entity.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	return nil, 0, nil
}

type fakeInvoiceRepo struct {
	created   []*entity.Invoice
	createErr error
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if r.createErr != nil {
		return r.createErr
	}
	invoice.ID = int64(len(r.created) + 1)
	r.created = append(r.created, invoice)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	for _, inv := range r.created {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) GetWithDetails(ctx context.Context, id int64) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeInvoiceRepo) List(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	return nil, 0, nil
}

func testBatch(id, productID int64, name string, stock int, dp, sp int64) *entity.ProductBatch {
	return &entity.ProductBatch{
		ID:           id,
		ProductID:    productID,
		BatchNo:      "B" + name,
		ExpiryDate:   time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
		MRP:          dp + 500,
		DP:           dp,
		SP:           sp,
		CurrentStock: stock,
		Product:      entity.Product{ID: productID, Name: name},
	}
}

func newTestBillingService(batchRepo *fakeBatchRepo, customerRepo *fakeCustomerRepo, invoiceRepo *fakeInvoiceRepo) (*BillingService, *SessionRegistry) {
	sessions := NewSessionRegistry(SessionRegistryConfig{
		CleanupInterval: time.Hour,
		SessionTTL:      time.Hour,
	})
	return NewBillingService(sessions, batchRepo, customerRepo, invoiceRepo), sessions
}

func TestSubmitSessionCreatesInvoiceAndResets(t *testing.T) {
	batchRepo := newFakeBatchRepo(testBatch(1, 10, "Amla Juice", 5, 30000, 4))
	customerRepo := newFakeCustomerRepo()
	invoiceRepo := &fakeInvoiceRepo{}
	svc, sessions := newTestBillingService(batchRepo, customerRepo, invoiceRepo)
	defer sessions.Stop()

	ctx := context.Background()
	const userID = int64(7)

	_, err := svc.AddItem(ctx, userID, 1)
	require.NoError(t, err)
	_, err = svc.UpdateItemQty(userID, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddPayment(userID, enum.PaymentModeCash, 60000, "")
	require.NoError(t, err)

	invoice, err := svc.SubmitSession(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, enum.InvoiceStatusComplete, invoice.Status)
	assert.Equal(t, int64(60000), invoice.TotalAmount)
	assert.Equal(t, int64(60000), invoice.TotalPaid)
	assert.Equal(t, int64(0), invoice.DueAmount)
	assert.Equal(t, int64(8), invoice.TotalSP)
	assert.Equal(t, userID, invoice.UserID)
	assert.NotEmpty(t, invoice.InvoiceNo)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, 2, invoice.Items[0].Quantity)
	require.Len(t, invoice.Payments, 1)
	assert.Equal(t, enum.PaymentModeCash, invoice.Payments[0].Mode)

	assert.Equal(t, 2, batchRepo.decremented[1])

	// The session starts over after submit.
	snap := svc.GetSession(userID)
	assert.Empty(t, snap.Items)
	assert.Zero(t, snap.TotalAmount)
}

func TestSubmitSessionPartialPaymentLeavesInvoicePending(t *testing.T) {
	batchRepo := newFakeBatchRepo(testBatch(1, 10, "Chyawanprash", 5, 50000, 6))
	invoiceRepo := &fakeInvoiceRepo{}
	svc, sessions := newTestBillingService(batchRepo, newFakeCustomerRepo(), invoiceRepo)
	defer sessions.Stop()

	ctx := context.Background()
	const userID = int64(1)

	_, err := svc.AddItem(ctx, userID, 1)
	require.NoError(t, err)
	_, err = svc.AddPayment(userID, enum.PaymentModeUPI, 20000, "txn-981")
	require.NoError(t, err)

	invoice, err := svc.SubmitSession(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, enum.InvoiceStatusPending, invoice.Status)
	assert.Equal(t, int64(30000), invoice.DueAmount)
	require.Len(t, invoice.Payments, 1)
	require.NotNil(t, invoice.Payments[0].RefNo)
	assert.Equal(t, "txn-981", *invoice.Payments[0].RefNo)
}

func TestSubmitSessionEmptyCartRejected(t *testing.T) {
	svc, sessions := newTestBillingService(newFakeBatchRepo(), newFakeCustomerRepo(), &fakeInvoiceRepo{})
	defer sessions.Stop()

	_, err := svc.SubmitSession(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestSubmitSessionPersistsInlineCustomer(t *testing.T) {
	batchRepo := newFakeBatchRepo(testBatch(1, 10, "Ashwagandha", 3, 20000, 3))
	customerRepo := newFakeCustomerRepo()
	invoiceRepo := &fakeInvoiceRepo{}
	svc, sessions := newTestBillingService(batchRepo, customerRepo, invoiceRepo)
	defer sessions.Stop()

	ctx := context.Background()
	const userID = int64(2)

	_, err := svc.AddItem(ctx, userID, 1)
	require.NoError(t, err)
	_, err = svc.SetCustomer(ctx, userID, &SetSessionCustomerInput{
		Name:   "Ravi Kumar",
		Mobile: "9876543210",
	})
	require.NoError(t, err)

	invoice, err := svc.SubmitSession(ctx, userID)
	require.NoError(t, err)

	require.NotNil(t, invoice.CustomerID)
	assert.Equal(t, "Ravi Kumar", invoice.CustomerName)
	assert.Equal(t, "9876543210", invoice.Mobile)

	stored, _ := customerRepo.GetByMobile(ctx, "9876543210")
	require.NotNil(t, stored)
	assert.Equal(t, *invoice.CustomerID, stored.ID)
}

func TestSubmitSessionReusesCustomerWithSameMobile(t *testing.T) {
	existing := &entity.Customer{ID: 42, Name: "Meena", Mobile: "9000000000"}
	batchRepo := newFakeBatchRepo(testBatch(1, 10, "Triphala", 3, 15000, 2))
	customerRepo := newFakeCustomerRepo(existing)
	svc, sessions := newTestBillingService(batchRepo, customerRepo, &fakeInvoiceRepo{})
	defer sessions.Stop()

	ctx := context.Background()
	const userID = int64(3)

	_, err := svc.AddItem(ctx, userID, 1)
	require.NoError(t, err)
	_, err = svc.SetCustomer(ctx, userID, &SetSessionCustomerInput{
		Name:   "Meena K",
		Mobile: "9000000000",
	})
	require.NoError(t, err)

	invoice, err := svc.SubmitSession(ctx, userID)
	require.NoError(t, err)

	require.NotNil(t, invoice.CustomerID)
	assert.Equal(t, int64(42), *invoice.CustomerID)
}

func TestSubmitSessionInsufficientStockRejected(t *testing.T) {
	batchRepo := newFakeBatchRepo(testBatch(1, 10, "Brahmi", 4, 10000, 1))
	batchRepo.failIDs = []int64{1}
	invoiceRepo := &fakeInvoiceRepo{}
	svc, sessions := newTestBillingService(batchRepo, newFakeCustomerRepo(), invoiceRepo)
	defer sessions.Stop()

	ctx := context.Background()
	const userID = int64(4)

	_, err := svc.AddItem(ctx, userID, 1)
	require.NoError(t, err)

	_, err = svc.SubmitSession(ctx, userID)
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, 422, appErr.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", appErr.Reason)
	assert.Empty(t, invoiceRepo.created)

	// The cart survives a refused submit so the operator can fix it.
	snap := svc.GetSession(userID)
	assert.Len(t, snap.Items, 1)
}

func TestSubmitSessionRestoresStockWhenWriteFails(t *testing.T) {
	batchRepo := newFakeBatchRepo(testBatch(1, 10, "Neem", 4, 10000, 1))
	invoiceRepo := &fakeInvoiceRepo{createErr: errors.New("db down")}
	svc, sessions := newTestBillingService(batchRepo, newFakeCustomerRepo(), invoiceRepo)
	defer sessions.Stop()

	ctx := context.Background()
	const userID = int64(5)

	_, err := svc.AddItem(ctx, userID, 1)
	require.NoError(t, err)

	_, err = svc.SubmitSession(ctx, userID)
	require.Error(t, err)

	assert.Equal(t, 1, batchRepo.decremented[1])
	assert.Equal(t, 1, batchRepo.restored[1])
	assert.Equal(t, 4, batchRepo.batches[1].CurrentStock)
}

func TestCreateInvoiceOneShotSettlesInFull(t *testing.T) {
	batchRepo := newFakeBatchRepo(
		testBatch(1, 10, "Amla Juice", 5, 30000, 4),
		testBatch(2, 11, "Giloy", 8, 12000, 2),
	)
	invoiceRepo := &fakeInvoiceRepo{}
	svc, sessions := newTestBillingService(batchRepo, newFakeCustomerRepo(), invoiceRepo)
	defer sessions.Stop()

	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 9, &CreateInvoiceInput{
		CustomerName: "Walk In",
		Mobile:       "9111111111",
		Items: []CreateInvoiceItemInput{
			{ProductBatchID: 1, Quantity: 2},
			{ProductBatchID: 2, Quantity: 3},
		},
		PaymentMode: enum.PaymentModeUPI,
	})
	require.NoError(t, err)

	assert.Equal(t, enum.InvoiceStatusComplete, invoice.Status)
	assert.Equal(t, int64(96000), invoice.TotalAmount)
	assert.Equal(t, int64(96000), invoice.TotalPaid)
	assert.Equal(t, int64(0), invoice.DueAmount)
	assert.Equal(t, enum.PaymentModeUPI, invoice.PaymentMode)
	assert.Len(t, invoice.Items, 2)

	assert.Equal(t, 2, batchRepo.decremented[1])
	assert.Equal(t, 3, batchRepo.decremented[2])
}

func TestCreateInvoiceRejectsQuantityBeyondStock(t *testing.T) {
	batchRepo := newFakeBatchRepo(testBatch(1, 10, "Amla Juice", 2, 30000, 4))
	svc, sessions := newTestBillingService(batchRepo, newFakeCustomerRepo(), &fakeInvoiceRepo{})
	defer sessions.Stop()

	_, err := svc.CreateInvoice(context.Background(), 9, &CreateInvoiceInput{
		Items:       []CreateInvoiceItemInput{{ProductBatchID: 1, Quantity: 3}},
		PaymentMode: enum.PaymentModeCash,
	})
	require.Error(t, err)
}

func TestCreateInvoiceUnknownBatchRejected(t *testing.T) {
	svc, sessions := newTestBillingService(newFakeBatchRepo(), newFakeCustomerRepo(), &fakeInvoiceRepo{})
	defer sessions.Stop()

	_, err := svc.CreateInvoice(context.Background(), 9, &CreateInvoiceInput{
		Items:       []CreateInvoiceItemInput{{ProductBatchID: 99, Quantity: 1}},
		PaymentMode: enum.PaymentModeCash,
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestCreateInvoiceLeavesInteractiveSessionAlone(t *testing.T) {
	batchRepo := newFakeBatchRepo(
		testBatch(1, 10, "Amla Juice", 5, 30000, 4),
		testBatch(2, 11, "Giloy", 8, 12000, 2),
	)
	svc, sessions := newTestBillingService(batchRepo, newFakeCustomerRepo(), &fakeInvoiceRepo{})
	defer sessions.Stop()

	ctx := context.Background()
	const userID = int64(6)

	_, err := svc.AddItem(ctx, userID, 1)
	require.NoError(t, err)

	_, err = svc.CreateInvoice(ctx, userID, &CreateInvoiceInput{
		Items:       []CreateInvoiceItemInput{{ProductBatchID: 2, Quantity: 1}},
		PaymentMode: enum.PaymentModeCash,
	})
	require.NoError(t, err)

	snap := svc.GetSession(userID)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(1), snap.Items[0].BatchID)
}
