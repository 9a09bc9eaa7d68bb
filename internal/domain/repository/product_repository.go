package repository

import (
	"context"

	"github.com/sanjeevani/pos-api/internal/domain/entity"
)

// ProductRepository defines the interface for product catalog operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// Search matches product name or code against the term, capped at limit rows.
	Search(ctx context.Context, term string, limit int) ([]entity.Product, error)
}

// BatchRepository defines the interface for product batch operations
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.ProductBatch) error
	GetByID(ctx context.Context, id int64) (*entity.ProductBatch, error)
	GetByIDs(ctx context.Context, ids []int64) ([]entity.ProductBatch, error)
	// ListByProduct returns a product's batches with stock on hand,
	// ordered by expiry date ascending (oldest batch sells first).
	ListByProduct(ctx context.Context, productID int64) ([]entity.ProductBatch, error)
	// AtomicDecrementStock decrements current_stock for each batch ID by the
	// mapped quantity, guarded so stock never goes negative. Returns the IDs
	// whose decrement failed due to insufficient stock; on any failure no
	// batch is decremented.
	AtomicDecrementStock(ctx context.Context, decrements map[int64]int) ([]int64, error)
	// AtomicIncrementStock restores stock, the inverse of AtomicDecrementStock.
	AtomicIncrementStock(ctx context.Context, increments map[int64]int) error
}
