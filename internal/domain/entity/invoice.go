package entity

import (
	"encoding/json"
	"time"

	"github.com/sanjeevani/pos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Invoice represents a submitted bill
type Invoice struct {
	ID               int64              `gorm:"primaryKey" json:"id"`
	InvoiceNo        string             `gorm:"size:100;unique;not null" json:"invoiceNo"`
	UserID           int64              `gorm:"not null;index" json:"userId"`
	CustomerID       *int64             `gorm:"index" json:"customerId,omitempty"`
	CustomerName     string             `gorm:"size:255" json:"customerName"`
	Mobile           string             `gorm:"size:20" json:"mobile"`
	ReferenceAscplID *string            `gorm:"size:50;column:reference_ascpl_id" json:"referenceAscplId,omitempty"`
	Status           enum.InvoiceStatus `gorm:"default:0" json:"status"`
	PaymentMode      enum.PaymentMode   `gorm:"size:20" json:"paymentMode"`
	TotalAmount      int64              `gorm:"default:0" json:"-"` // Stored in paise
	TotalSP          int64              `gorm:"default:0;column:total_sp" json:"totalSp"`
	TotalPaid        int64              `gorm:"default:0" json:"-"` // Stored in paise
	DueAmount        int64              `gorm:"default:0" json:"-"` // Stored in paise
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	User     User             `gorm:"foreignKey:UserID" json:"-"`
	Customer *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []InvoiceItem    `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Payments []InvoicePayment `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// MarshalJSON converts the paise fields to decimal rupees for API responses
func (inv Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		Alias
		TotalAmount float64 `json:"totalAmount"`
		TotalPaid   float64 `json:"totalPaid"`
		DueAmount   float64 `json:"dueAmount"`
	}{
		Alias:       Alias(inv),
		TotalAmount: float64(inv.TotalAmount) / 100,
		TotalPaid:   float64(inv.TotalPaid) / 100,
		DueAmount:   float64(inv.DueAmount) / 100,
	})
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem is one billed batch line. Price and point values are
// snapshots taken at submission time; later batch edits do not touch them.
type InvoiceItem struct {
	ID             int64          `gorm:"primaryKey" json:"id"`
	InvoiceID      int64          `gorm:"not null;index" json:"invoiceId"`
	ProductBatchID int64          `gorm:"not null;index" json:"productBatchId"`
	ProductID      int64          `gorm:"not null" json:"productId"`
	Name           string         `gorm:"size:255" json:"name"`
	BatchNo        string         `gorm:"size:100" json:"batchNo"`
	Quantity       int            `gorm:"not null" json:"quantity"`
	UnitPrice      int64          `gorm:"not null" json:"-"` // Stored in paise
	UnitSP         int64          `gorm:"default:0;column:unit_sp" json:"sp"`
	LineTotal      int64          `gorm:"not null" json:"-"` // Stored in paise
	LineSP         int64          `gorm:"default:0;column:line_sp" json:"lineSp"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// MarshalJSON converts the paise fields to decimal rupees for API responses
func (it InvoiceItem) MarshalJSON() ([]byte, error) {
	type Alias InvoiceItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"dp"`
		LineTotal float64 `json:"lineTotal"`
	}{
		Alias:     Alias(it),
		UnitPrice: float64(it.UnitPrice) / 100,
		LineTotal: float64(it.LineTotal) / 100,
	})
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// InvoicePayment is one tender event recorded against an invoice
type InvoicePayment struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	InvoiceID int64            `gorm:"not null;index" json:"invoiceId"`
	Mode      enum.PaymentMode `gorm:"size:20;not null" json:"mode"`
	Amount    int64            `gorm:"not null" json:"-"` // Stored in paise
	RefNo     *string          `gorm:"size:100" json:"refNo,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// MarshalJSON converts the paise amount to decimal rupees for API responses
func (p InvoicePayment) MarshalJSON() ([]byte, error) {
	type Alias InvoicePayment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.Amount) / 100,
	})
}

// TableName returns the table name for the InvoicePayment model
func (InvoicePayment) TableName() string {
	return "invoice_payments"
}
