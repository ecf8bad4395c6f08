package contract

import (
	"context"

	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/repository/specification"
)

type OrderOutcomeRepository interface {
	// Create appends one outcome. Outcomes are append-only; there is no update.
	Create(ctx context.Context, outcome *entity.OrderOutcome) error
	CreateBulk(ctx context.Context, outcomes []*entity.OrderOutcome) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.OrderOutcome, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
