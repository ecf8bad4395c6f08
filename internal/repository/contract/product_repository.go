package contract

import (
	"context"

	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/repository/specification"
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	CreateBulk(ctx context.Context, products []*entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// UpdateStockLevels writes the ledger snapshot back so stock survives a
	// restart. Only the stock column is touched.
	UpdateStockLevels(ctx context.Context, stock map[string]int) error
}
