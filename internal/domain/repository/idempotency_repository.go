package repository

import (
	"context"

	"github.com/sanjeevani/pos-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key storage
type IdempotencyRepository interface {
	Create(ctx context.Context, key *entity.IdempotencyKey) error
	GetByKey(ctx context.Context, key string, userID int64) (*entity.IdempotencyKey, error)
	DeleteExpired(ctx context.Context) error
}
