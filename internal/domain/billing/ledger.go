// Package billing implements the in-memory cart and payment ledger behind a
// billing session. The ledger owns its lines, customer, reference party and
// payment sequence; consumers only ever see copies via Snapshot. Every
// mutating command either fully applies and recomputes the derived totals,
// or rejects with one of the typed errors in errors.go and changes nothing.
package billing

import (
	"encoding/json"

	"github.com/sanjeevani/pos-api/internal/domain/enum"
)

// BatchCandidate describes an inventory batch about to enter the cart.
// Quantity and the derived fields are owned by the ledger, not the caller.
type BatchCandidate struct {
	BatchID    int64
	ProductID  int64
	Name       string
	BatchNo    string
	ExpiryDate string
	MRP        int64 // paise, snapshot for display
	UnitPrice  int64 // dp, paise
	UnitSP     int64 // loyalty points per unit
	Stock      int   // available stock ceiling
}

// Line is one inventory batch in the cart. At most one line exists per
// batch ID; quantity never exceeds Stock and never drops below 1.
type Line struct {
	BatchID    int64  `json:"productBatchId"`
	ProductID  int64  `json:"productId"`
	Name       string `json:"name"`
	BatchNo    string `json:"batchNo"`
	ExpiryDate string `json:"expiryDate"`
	Quantity   int    `json:"quantity"`
	MRP        int64  `json:"-"`
	UnitPrice  int64  `json:"-"`
	UnitSP     int64  `json:"sp"`
	Stock      int    `json:"currentStock"`
	LineTotal  int64  `json:"-"`
	LineSP     int64  `json:"lineSp"`
}

// MarshalJSON renders the paise fields as decimal rupees.
func (l Line) MarshalJSON() ([]byte, error) {
	type Alias Line
	return json.Marshal(&struct {
		Alias
		MRP       float64 `json:"mrp"`
		UnitPrice float64 `json:"dp"`
		LineTotal float64 `json:"lineTotal"`
	}{
		Alias:     Alias(l),
		MRP:       float64(l.MRP) / 100,
		UnitPrice: float64(l.UnitPrice) / 100,
		LineTotal: float64(l.LineTotal) / 100,
	})
}

// Customer is the invoice's billed-to party. ID is nil while the customer
// only exists in the session (created inline, not yet persisted).
type Customer struct {
	ID      *int64 `json:"id,omitempty"`
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	AscplID string `json:"ascplId,omitempty"`
	IsNew   bool   `json:"isNew,omitempty"`
}

// Payment is one recorded tender event. Order of insertion is significant:
// payments are displayed and removed by ordinal index.
type Payment struct {
	Mode   enum.PaymentMode `json:"mode"`
	Amount int64            `json:"-"`
	RefNo  string           `json:"refNo,omitempty"`
}

// MarshalJSON renders the paise amount as decimal rupees.
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.Amount) / 100,
	})
}

// Totals holds the four derived aggregates. They are recomputed inside
// every mutating command and are never independently settable.
type Totals struct {
	TotalAmount int64 `json:"-"`
	TotalSP     int64 `json:"totalSp"`
	TotalPaid   int64 `json:"-"`
	DueAmount   int64 `json:"-"`
}

// Snapshot is an immutable copy of the ledger state handed to consumers.
type Snapshot struct {
	Items            []Line    `json:"items"`
	Customer         *Customer `json:"customer"`
	ReferenceAscplID string    `json:"referenceAscplId,omitempty"`
	Payments         []Payment `json:"payments"`
	Totals
}

// MarshalJSON renders the paise aggregates as decimal rupees.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type Alias Snapshot
	return json.Marshal(&struct {
		Alias
		TotalAmount float64 `json:"totalAmount"`
		TotalPaid   float64 `json:"totalPaid"`
		DueAmount   float64 `json:"dueAmount"`
	}{
		Alias:       Alias(s),
		TotalAmount: float64(s.TotalAmount) / 100,
		TotalPaid:   float64(s.TotalPaid) / 100,
		DueAmount:   float64(s.DueAmount) / 100,
	})
}

// Ledger is the cart and payment state machine for one billing session.
// It is not safe for concurrent use; the session registry serializes
// commands per session.
type Ledger struct {
	lines            []Line
	customer         *Customer
	referenceAscplID string
	payments         []Payment
	totals           Totals
}

// NewLedger returns an empty ledger with all aggregates at zero.
func NewLedger() *Ledger {
	return &Ledger{}
}

// AddItem inserts the batch as a new line with quantity 1, or increments
// the existing line for the same batch by 1. Rejects with
// ErrCapacityExceeded when the increment would pass the stock ceiling.
func (l *Ledger) AddItem(c BatchCandidate) error {
	if i := l.lineIndex(c.BatchID); i >= 0 {
		line := &l.lines[i]
		if line.Quantity+1 > line.Stock {
			return ErrCapacityExceeded
		}
		line.Quantity++
		line.recalc()
		l.recalcTotals()
		return nil
	}

	if c.Stock < 1 {
		return ErrCapacityExceeded
	}

	line := Line{
		BatchID:    c.BatchID,
		ProductID:  c.ProductID,
		Name:       c.Name,
		BatchNo:    c.BatchNo,
		ExpiryDate: c.ExpiryDate,
		Quantity:   1,
		MRP:        c.MRP,
		UnitPrice:  c.UnitPrice,
		UnitSP:     c.UnitSP,
		Stock:      c.Stock,
	}
	line.recalc()
	l.lines = append(l.lines, line)
	l.recalcTotals()
	return nil
}

// UpdateItemQty replaces the quantity of the line for batchID. Rejects with
// ErrInvalidQuantity below 1, ErrUnknownBatch for an absent line, and
// ErrCapacityExceeded above the line's stock ceiling.
func (l *Ledger) UpdateItemQty(batchID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	i := l.lineIndex(batchID)
	if i < 0 {
		return ErrUnknownBatch
	}
	line := &l.lines[i]
	if quantity > line.Stock {
		return ErrCapacityExceeded
	}
	line.Quantity = quantity
	line.recalc()
	l.recalcTotals()
	return nil
}

// RemoveItem deletes the line for batchID.
func (l *Ledger) RemoveItem(batchID int64) error {
	i := l.lineIndex(batchID)
	if i < 0 {
		return ErrUnknownBatch
	}
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	l.recalcTotals()
	return nil
}

// SetCustomer replaces the attached customer wholesale. Passing nil detaches.
func (l *Ledger) SetCustomer(c *Customer) {
	if c == nil {
		l.customer = nil
		return
	}
	cp := *c
	if c.ID != nil {
		id := *c.ID
		cp.ID = &id
	}
	l.customer = &cp
}

// SetReferenceParty replaces the free-text sponsor ASCPL ID. Empty clears it.
func (l *Ledger) SetReferenceParty(ascplID string) {
	l.referenceAscplID = ascplID
}

// AddPayment appends a tender event. Rejects non-positive amounts and
// amounts above the current due amount.
func (l *Ledger) AddPayment(mode enum.PaymentMode, amount int64, refNo string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > l.totals.DueAmount {
		return ErrOverpayment
	}
	l.payments = append(l.payments, Payment{Mode: mode, Amount: amount, RefNo: refNo})
	l.recalcTotals()
	return nil
}

// RemovePayment deletes the payment at the given ordinal position.
func (l *Ledger) RemovePayment(index int) error {
	if index < 0 || index >= len(l.payments) {
		return ErrUnknownPaymentIndex
	}
	l.payments = append(l.payments[:index], l.payments[index+1:]...)
	l.recalcTotals()
	return nil
}

// Reset clears all lines, the customer, the reference party and all
// payments. The result is observably identical to NewLedger().
func (l *Ledger) Reset() {
	*l = Ledger{}
}

// Snapshot returns a deep copy of the current state. Mutating the returned
// value has no effect on the ledger.
func (l *Ledger) Snapshot() Snapshot {
	s := Snapshot{
		Items:            make([]Line, len(l.lines)),
		ReferenceAscplID: l.referenceAscplID,
		Payments:         make([]Payment, len(l.payments)),
		Totals:           l.totals,
	}
	copy(s.Items, l.lines)
	copy(s.Payments, l.payments)
	if l.customer != nil {
		c := *l.customer
		if l.customer.ID != nil {
			id := *l.customer.ID
			c.ID = &id
		}
		s.Customer = &c
	}
	return s
}

// Empty reports whether the cart holds no lines.
func (l *Ledger) Empty() bool {
	return len(l.lines) == 0
}

func (l *Ledger) lineIndex(batchID int64) int {
	for i := range l.lines {
		if l.lines[i].BatchID == batchID {
			return i
		}
	}
	return -1
}

func (ln *Line) recalc() {
	ln.LineTotal = int64(ln.Quantity) * ln.UnitPrice
	ln.LineSP = int64(ln.Quantity) * ln.UnitSP
}

func (l *Ledger) recalcTotals() {
	var t Totals
	for i := range l.lines {
		t.TotalAmount += l.lines[i].LineTotal
		t.TotalSP += l.lines[i].LineSP
	}
	for i := range l.payments {
		t.TotalPaid += l.payments[i].Amount
	}
	t.DueAmount = t.TotalAmount - t.TotalPaid
	l.totals = t
}
