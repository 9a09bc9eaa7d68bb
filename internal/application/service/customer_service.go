package service

import (
	"context"
	"strings"

	"github.com/sanjeevani/pos-api/internal/domain/entity"
	"github.com/sanjeevani/pos-api/internal/domain/repository"
	"github.com/sanjeevani/pos-api/pkg/apperror"
	"github.com/sanjeevani/pos-api/pkg/pagination"
)

const customerSearchLimit = 20

// CustomerService handles customer directory operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// Search returns customers matching the term by name, mobile or ASCPL ID.
// A blank term returns no rows rather than the whole directory.
func (s *CustomerService) Search(ctx context.Context, term string) ([]entity.Customer, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []entity.Customer{}, nil
	}
	return s.customerRepo.Search(ctx, term, customerSearchLimit)
}

// CreateCustomerInput represents the customer creation input
type CreateCustomerInput struct {
	Name    string
	Mobile  string
	AscplID *string
}

// Create registers a new customer, rejecting duplicate mobile numbers
func (s *CustomerService) Create(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	existing, err := s.customerRepo.GetByMobile(ctx, input.Mobile)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Customer with this mobile already exists")
	}

	customer := &entity.Customer{
		Name:    input.Name,
		Mobile:  input.Mobile,
		AscplID: input.AscplID,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetByID returns one customer
func (s *CustomerService) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// List returns a paginated customer directory
func (s *CustomerService) List(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(customers, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}
