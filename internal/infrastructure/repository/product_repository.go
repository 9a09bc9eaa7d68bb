package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/sanjeevani/pos-api/internal/domain/entity"
	domainRepo "github.com/sanjeevani/pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Preload("Batches").First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) Search(ctx context.Context, term string, limit int) ([]entity.Product, error) {
	var products []entity.Product
	pattern := "%" + term + "%"
	err := r.db.WithContext(ctx).
		Preload("Batches", func(db *gorm.DB) *gorm.DB {
			return db.Where("current_stock > 0").Order("expiry_date ASC")
		}).
		Where("name ILIKE ? OR code ILIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// errInsufficientStock aborts the decrement transaction so it rolls back.
var errInsufficientStock = errors.New("insufficient stock")

type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new product batch repository
func NewBatchRepository(db *gorm.DB) domainRepo.BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Create(ctx context.Context, batch *entity.ProductBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *batchRepository) GetByID(ctx context.Context, id int64) (*entity.ProductBatch, error) {
	var batch entity.ProductBatch
	err := r.db.WithContext(ctx).Preload("Product").First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &batch, err
}

func (r *batchRepository) GetByIDs(ctx context.Context, ids []int64) ([]entity.ProductBatch, error) {
	var batches []entity.ProductBatch
	err := r.db.WithContext(ctx).Preload("Product").
		Where("id IN ?", ids).
		Find(&batches).Error
	return batches, err
}

func (r *batchRepository) ListByProduct(ctx context.Context, productID int64) ([]entity.ProductBatch, error) {
	var batches []entity.ProductBatch
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("expiry_date ASC").
		Find(&batches).Error
	return batches, err
}

func (r *batchRepository) AtomicDecrementStock(ctx context.Context, decrements map[int64]int) ([]int64, error) {
	var failed []int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Fixed iteration order keeps concurrent checkouts from deadlocking
		// on each other's row locks.
		ids := make([]int64, 0, len(decrements))
		for id := range decrements {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			qty := decrements[id]
			result := tx.Model(&entity.ProductBatch{}).
				Where("id = ? AND current_stock >= ?", id, qty).
				UpdateColumn("current_stock", gorm.Expr("current_stock - ?", qty))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				failed = append(failed, id)
			}
		}

		if len(failed) > 0 {
			// Roll the transaction back so no batch is decremented.
			return errInsufficientStock
		}
		return nil
	})

	if errors.Is(err, errInsufficientStock) {
		return failed, nil
	}
	return nil, err
}

func (r *batchRepository) AtomicIncrementStock(ctx context.Context, increments map[int64]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, qty := range increments {
			err := tx.Model(&entity.ProductBatch{}).
				Where("id = ?", id).
				UpdateColumn("current_stock", gorm.Expr("current_stock + ?", qty)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
