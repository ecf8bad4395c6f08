package contract

import (
	"context"

	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/repository/specification"
)

type EmailClassificationRepository interface {
	Upsert(ctx context.Context, classification *entity.EmailClassification) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.EmailClassification, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EmailClassification, error)
}
