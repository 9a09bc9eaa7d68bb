package repository

import (
	"context"
	"time"

	"github.com/sanjeevani/pos-api/internal/domain/entity"
	"github.com/sanjeevani/pos-api/pkg/pagination"
)

// InvoiceFilterParams holds filtering options for invoice listing
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	CustomerID *int64
	StartDate  *time.Time
	EndDate    *time.Time
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// Create persists the invoice together with its items and payments.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id int64) (*entity.Invoice, error)
	// GetWithDetails loads the invoice with items, payments and customer.
	GetWithDetails(ctx context.Context, id int64) (*entity.Invoice, error)
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
}
