package repository

import (
	"context"

	"github.com/sanjeevani/pos-api/internal/domain/entity"
)

// UserRepository defines the interface for till-operator data operations
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}
