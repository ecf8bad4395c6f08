package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProductEmbedding is the durable form of one catalog index entry. The serving
// index is rebuilt from these rows at startup without re-embedding.
type ProductEmbedding struct {
	Id             uuid.UUID
	ProductId      string
	Snippet        string
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
