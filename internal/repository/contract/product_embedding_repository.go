package contract

import (
	"context"

	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/repository/specification"
)

// ScoredProductEmbedding wraps ProductEmbedding with its similarity score
type ScoredProductEmbedding struct {
	Embedding  *entity.ProductEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ProductEmbeddingRepository interface {
	Upsert(ctx context.Context, embedding *entity.ProductEmbedding) error
	UpsertBulk(ctx context.Context, embeddings []*entity.ProductEmbedding) error
	DeleteByProductId(ctx context.Context, productId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProductEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs DB-side cosine search, filtered by threshold.
	// The serving path uses the in-memory index; this is the durable fallback
	// exercised by the integration tests.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredProductEmbedding, error)
}
