package service

import (
	"context"
	"strings"

	"github.com/sanjeevani/pos-api/internal/domain/entity"
	"github.com/sanjeevani/pos-api/internal/domain/repository"
	"github.com/sanjeevani/pos-api/pkg/apperror"
)

const productSearchLimit = 20

// InventoryService handles product and batch lookups for the till
type InventoryService struct {
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
}

// NewInventoryService creates a new inventory service
func NewInventoryService(productRepo repository.ProductRepository, batchRepo repository.BatchRepository) *InventoryService {
	return &InventoryService{
		productRepo: productRepo,
		batchRepo:   batchRepo,
	}
}

// SearchProducts returns products matching the term by name or code,
// each with its in-stock batches ordered by expiry
func (s *InventoryService) SearchProducts(ctx context.Context, term string) ([]entity.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []entity.Product{}, nil
	}
	return s.productRepo.Search(ctx, term, productSearchLimit)
}

// ListBatches returns all batches of a product ordered by expiry date,
// oldest first, so the till always offers the soonest-expiring stock
func (s *InventoryService) ListBatches(ctx context.Context, productID int64) ([]entity.ProductBatch, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return s.batchRepo.ListByProduct(ctx, productID)
}
