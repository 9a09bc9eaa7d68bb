package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sanjeevani/pos-api/internal/domain/billing"
	"github.com/sanjeevani/pos-api/internal/domain/entity"
	"github.com/sanjeevani/pos-api/internal/domain/enum"
	"github.com/sanjeevani/pos-api/internal/domain/repository"
	"github.com/sanjeevani/pos-api/pkg/apperror"
	"github.com/sanjeevani/pos-api/pkg/pagination"
	"github.com/sanjeevani/pos-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// BillingService drives billing sessions and turns them into invoices.
// Ledger commands run under the session registry's per-operator lock;
// everything the caller gets back is a detached snapshot.
type BillingService struct {
	sessions     *SessionRegistry
	batchRepo    repository.BatchRepository
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
}

// NewBillingService creates a new billing service
func NewBillingService(
	sessions *SessionRegistry,
	batchRepo repository.BatchRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
) *BillingService {
	return &BillingService{
		sessions:     sessions,
		batchRepo:    batchRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// GetSession returns the operator's current cart state
func (s *BillingService) GetSession(userID int64) billing.Snapshot {
	var snap billing.Snapshot
	_ = s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		snap = l.Snapshot()
		return nil
	})
	return snap
}

// AddItem puts one unit of a batch into the operator's cart, or bumps the
// quantity when the batch is already carted
func (s *BillingService) AddItem(ctx context.Context, userID, batchID int64) (billing.Snapshot, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return billing.Snapshot{}, err
	}
	if batch == nil {
		return billing.Snapshot{}, apperror.NewNotFoundError("Batch")
	}

	candidate := batchCandidate(batch)

	var snap billing.Snapshot
	err = s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		if err := l.AddItem(candidate); err != nil {
			return err
		}
		snap = l.Snapshot()
		return nil
	})
	return snap, err
}

// UpdateItemQty sets the quantity of a carted batch
func (s *BillingService) UpdateItemQty(userID, batchID int64, quantity int) (billing.Snapshot, error) {
	var snap billing.Snapshot
	err := s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		if err := l.UpdateItemQty(batchID, quantity); err != nil {
			return err
		}
		snap = l.Snapshot()
		return nil
	})
	return snap, err
}

// RemoveItem drops a carted batch entirely
func (s *BillingService) RemoveItem(userID, batchID int64) (billing.Snapshot, error) {
	var snap billing.Snapshot
	err := s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		if err := l.RemoveItem(batchID); err != nil {
			return err
		}
		snap = l.Snapshot()
		return nil
	})
	return snap, err
}

// SetSessionCustomerInput selects the bill-to party. Either CustomerID
// points at an existing customer or Name/Mobile describe a new one that
// will be persisted on submit.
type SetSessionCustomerInput struct {
	CustomerID *int64
	Name       string
	Mobile     string
	AscplID    string
}

// SetCustomer attaches a customer to the session
func (s *BillingService) SetCustomer(ctx context.Context, userID int64, input *SetSessionCustomerInput) (billing.Snapshot, error) {
	var target *billing.Customer

	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return billing.Snapshot{}, err
		}
		if customer == nil {
			return billing.Snapshot{}, apperror.NewNotFoundError("Customer")
		}
		target = &billing.Customer{
			ID:     &customer.ID,
			Name:   customer.Name,
			Mobile: customer.Mobile,
		}
		if customer.AscplID != nil {
			target.AscplID = *customer.AscplID
		}
	} else {
		name := strings.TrimSpace(input.Name)
		mobile := strings.TrimSpace(input.Mobile)
		if name == "" || mobile == "" {
			return billing.Snapshot{}, apperror.NewBadRequestError("Name and mobile are required for a new customer")
		}
		target = &billing.Customer{
			Name:    name,
			Mobile:  mobile,
			AscplID: strings.TrimSpace(input.AscplID),
			IsNew:   true,
		}
	}

	var snap billing.Snapshot
	err := s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		l.SetCustomer(target)
		snap = l.Snapshot()
		return nil
	})
	return snap, err
}

// DetachCustomer clears the session's bill-to party
func (s *BillingService) DetachCustomer(userID int64) billing.Snapshot {
	var snap billing.Snapshot
	_ = s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		l.SetCustomer(nil)
		snap = l.Snapshot()
		return nil
	})
	return snap
}

// SetReferenceParty records the referring member's ASCPL ID on the session
func (s *BillingService) SetReferenceParty(userID int64, ascplID string) billing.Snapshot {
	var snap billing.Snapshot
	_ = s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		l.SetReferenceParty(strings.TrimSpace(ascplID))
		snap = l.Snapshot()
		return nil
	})
	return snap
}

// AddPayment records a tender event against the session. Amount is paise.
func (s *BillingService) AddPayment(userID int64, mode enum.PaymentMode, amount int64, refNo string) (billing.Snapshot, error) {
	if !mode.Valid() {
		return billing.Snapshot{}, apperror.NewBadRequestError("Unknown payment mode")
	}

	var snap billing.Snapshot
	err := s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		if err := l.AddPayment(mode, amount, refNo); err != nil {
			return err
		}
		snap = l.Snapshot()
		return nil
	})
	return snap, err
}

// RemovePayment deletes the payment at the given ordinal index
func (s *BillingService) RemovePayment(userID int64, index int) (billing.Snapshot, error) {
	var snap billing.Snapshot
	err := s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		if err := l.RemovePayment(index); err != nil {
			return err
		}
		snap = l.Snapshot()
		return nil
	})
	return snap, err
}

// ResetSession clears the operator's cart back to empty
func (s *BillingService) ResetSession(userID int64) billing.Snapshot {
	var snap billing.Snapshot
	_ = s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		l.Reset()
		snap = l.Snapshot()
		return nil
	})
	return snap
}

// SubmitSession turns the operator's session into a persisted invoice and
// resets the session on success
func (s *BillingService) SubmitSession(ctx context.Context, userID int64) (*entity.Invoice, error) {
	var invoice *entity.Invoice

	err := s.sessions.WithLedger(userID, func(l *billing.Ledger) error {
		if l.Empty() {
			return apperror.NewBadRequestError("Cart is empty")
		}

		snap := l.Snapshot()
		created, err := s.persistInvoice(ctx, userID, snap)
		if err != nil {
			return err
		}
		invoice = created
		l.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// CreateInvoiceInput is the one-shot invoice payload: cart lines plus a
// single payment mode that settles the full amount.
type CreateInvoiceInput struct {
	CustomerID       *int64
	CustomerName     string
	Mobile           string
	ReferenceAscplID string
	Items            []CreateInvoiceItemInput
	PaymentMode      enum.PaymentMode
}

// CreateInvoiceItemInput is one requested cart line
type CreateInvoiceItemInput struct {
	ProductBatchID int64
	Quantity       int
}

// CreateInvoice builds a throwaway ledger from the payload, settles it in
// full with the given payment mode and persists the result. The operator's
// interactive session is untouched.
func (s *BillingService) CreateInvoice(ctx context.Context, userID int64, input *CreateInvoiceInput) (*entity.Invoice, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("At least one item is required")
	}
	if !input.PaymentMode.Valid() {
		return nil, apperror.NewBadRequestError("Unknown payment mode")
	}

	ledger := billing.NewLedger()

	ids := make([]int64, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductBatchID)
	}
	batches, err := s.batchRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*entity.ProductBatch, len(batches))
	for i := range batches {
		byID[batches[i].ID] = &batches[i]
	}

	for _, item := range input.Items {
		batch, ok := byID[item.ProductBatchID]
		if !ok {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Batch %d", item.ProductBatchID))
		}
		if err := ledger.AddItem(batchCandidate(batch)); err != nil {
			return nil, err
		}
		if item.Quantity != 1 {
			if err := ledger.UpdateItemQty(batch.ID, item.Quantity); err != nil {
				return nil, err
			}
		}
	}

	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		c := &billing.Customer{ID: &customer.ID, Name: customer.Name, Mobile: customer.Mobile}
		if customer.AscplID != nil {
			c.AscplID = *customer.AscplID
		}
		ledger.SetCustomer(c)
	} else if input.Mobile != "" {
		ledger.SetCustomer(&billing.Customer{
			Name:   strings.TrimSpace(input.CustomerName),
			Mobile: strings.TrimSpace(input.Mobile),
			IsNew:  true,
		})
	}
	ledger.SetReferenceParty(strings.TrimSpace(input.ReferenceAscplID))

	// The one-shot flow always settles the bill in full.
	if due := ledger.Snapshot().DueAmount; due > 0 {
		if err := ledger.AddPayment(input.PaymentMode, due, ""); err != nil {
			return nil, err
		}
	}

	return s.persistInvoice(ctx, userID, ledger.Snapshot())
}

// GetInvoice returns one invoice with items, payments and customer
func (s *BillingService) GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices returns a filtered, paginated invoice history
func (s *BillingService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(invoices,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// persistInvoice resolves the customer, reserves stock and writes the
// invoice. Stock is decremented first with a guarded update; if the write
// fails afterwards the decrement is rolled back.
func (s *BillingService) persistInvoice(ctx context.Context, userID int64, snap billing.Snapshot) (*entity.Invoice, error) {
	customerID, customerName, mobile, err := s.resolveCustomer(ctx, snap.Customer)
	if err != nil {
		return nil, err
	}

	decrements := make(map[int64]int, len(snap.Items))
	for _, line := range snap.Items {
		decrements[line.BatchID] = line.Quantity
	}
	failed, err := s.batchRepo.AtomicDecrementStock(ctx, decrements)
	if err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		return nil, apperror.NewRejection("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for batches %v", failed))
	}

	status := enum.InvoiceStatusPending
	if snap.DueAmount <= 0 {
		status = enum.InvoiceStatusComplete
	}

	invoice := &entity.Invoice{
		InvoiceNo:    utils.GenerateInvoiceNo("INV"),
		UserID:       userID,
		CustomerID:   customerID,
		CustomerName: customerName,
		Mobile:       mobile,
		Status:       status,
		TotalAmount:  snap.TotalAmount,
		TotalSP:      snap.TotalSP,
		TotalPaid:    snap.TotalPaid,
		DueAmount:    snap.DueAmount,
	}
	if snap.ReferenceAscplID != "" {
		ref := snap.ReferenceAscplID
		invoice.ReferenceAscplID = &ref
	}
	if len(snap.Payments) > 0 {
		invoice.PaymentMode = snap.Payments[0].Mode
	}

	for _, line := range snap.Items {
		invoice.Items = append(invoice.Items, entity.InvoiceItem{
			ProductBatchID: line.BatchID,
			ProductID:      line.ProductID,
			Name:           line.Name,
			BatchNo:        line.BatchNo,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			UnitSP:         line.UnitSP,
			LineTotal:      line.LineTotal,
			LineSP:         line.LineSP,
		})
	}
	for _, p := range snap.Payments {
		payment := entity.InvoicePayment{Mode: p.Mode, Amount: p.Amount}
		if p.RefNo != "" {
			ref := p.RefNo
			payment.RefNo = &ref
		}
		invoice.Payments = append(invoice.Payments, payment)
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		if restoreErr := s.batchRepo.AtomicIncrementStock(ctx, decrements); restoreErr != nil {
			logrus.WithError(restoreErr).WithField("decrements", decrements).
				Error("failed to restore stock after invoice write failure")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"invoiceNo": invoice.InvoiceNo,
		"userId":    userID,
		"total":     invoice.TotalAmount,
		"status":    invoice.Status.String(),
	}).Info("invoice created")

	return invoice, nil
}

// resolveCustomer persists an inline customer if needed and returns the
// denormalized bill-to fields for the invoice row
func (s *BillingService) resolveCustomer(ctx context.Context, c *billing.Customer) (*int64, string, string, error) {
	if c == nil {
		return nil, "", "", nil
	}

	if c.ID != nil {
		return c.ID, c.Name, c.Mobile, nil
	}

	// Inline customer. Reuse an existing row with the same mobile instead
	// of creating a duplicate.
	existing, err := s.customerRepo.GetByMobile(ctx, c.Mobile)
	if err != nil {
		return nil, "", "", err
	}
	if existing != nil {
		return &existing.ID, existing.Name, existing.Mobile, nil
	}

	customer := &entity.Customer{Name: c.Name, Mobile: c.Mobile}
	if c.AscplID != "" {
		ascpl := c.AscplID
		customer.AscplID = &ascpl
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, "", "", err
	}
	return &customer.ID, customer.Name, customer.Mobile, nil
}

// batchCandidate maps a persisted batch into the ledger's input shape
func batchCandidate(b *entity.ProductBatch) billing.BatchCandidate {
	return billing.BatchCandidate{
		BatchID:    b.ID,
		ProductID:  b.ProductID,
		Name:       b.Product.Name,
		BatchNo:    b.BatchNo,
		ExpiryDate: b.ExpiryDate.Format("2006-01-02"),
		MRP:        b.MRP,
		UnitPrice:  b.DP,
		UnitSP:     b.SP,
		Stock:      b.CurrentStock,
	}
}
