package unitofwork

import (
	"context"

	"ai-mailroom-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProductRepository() contract.ProductRepository
	ProductEmbeddingRepository() contract.ProductEmbeddingRepository
	OrderOutcomeRepository() contract.OrderOutcomeRepository
	EmailClassificationRepository() contract.EmailClassificationRepository
}
