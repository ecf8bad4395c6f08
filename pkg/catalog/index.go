package catalog

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/pkg/embedding"
)

// SnippetLength bounds the denormalized description stored per entry. The
// snippet is what gets quoted in replies, so it must stay context-budget sized.
const SnippetLength = 300

// Entry is one indexed product: its id, embedding vector and the description
// snippet quoted in responses.
type Entry struct {
	ProductId string
	Vector    []float32
	Snippet   string
}

// Match pairs an Entry with its cosine similarity to a query vector.
type Match struct {
	Entry      *Entry
	Similarity float64
}

// Gap records a product that could not be embedded during a build. The build
// continues past it; partial availability beats total failure.
type Gap struct {
	ProductId string
	Err       error
}

// Index is an immutable snapshot of the searchable catalog. It is never
// mutated after construction; a rebuild produces a fresh Index which the
// Store publishes atomically.
type Index struct {
	entries []Entry // sorted by ProductId for deterministic iteration
	gaps    []Gap
}

func NewIndex(entries []Entry, gaps []Gap) *Index {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductId < sorted[j].ProductId
	})
	return &Index{entries: sorted, gaps: gaps}
}

func (ix *Index) Len() int {
	return len(ix.entries)
}

// Gaps returns the products skipped during the build that produced this index.
func (ix *Index) Gaps() []Gap {
	return ix.gaps
}

// Entries returns the indexed entries in product-id order.
func (ix *Index) Entries() []Entry {
	return ix.entries
}

// EntryByProduct returns the indexed entry for a product id, if present.
func (ix *Index) EntryByProduct(productId string) (*Entry, bool) {
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].ProductId >= productId
	})
	if i < len(ix.entries) && ix.entries[i].ProductId == productId {
		return &ix.entries[i], true
	}
	return nil, false
}

// Search returns the k highest-similarity entries for queryVec, ordered by
// descending cosine similarity with ties broken by lower product id. Returns
// fewer than k when the index holds fewer entries.
func (ix *Index) Search(queryVec []float32, k int) []Match {
	if k <= 0 || len(ix.entries) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(ix.entries))
	for i := range ix.entries {
		matches = append(matches, Match{
			Entry:      &ix.entries[i],
			Similarity: CosineSimilarity(queryVec, ix.entries[i].Vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Entry.ProductId < matches[j].Entry.ProductId
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}

// Store publishes Index snapshots. Readers always see either the previous or
// the new snapshot, never a partially built one; the swap is the only point
// that excludes readers.
type Store struct {
	current atomic.Pointer[Index]
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(NewIndex(nil, nil))
	return s
}

// Current returns the active snapshot. Never nil.
func (s *Store) Current() *Index {
	return s.current.Load()
}

// Publish atomically replaces the active snapshot.
func (s *Store) Publish(ix *Index) {
	if ix == nil {
		ix = NewIndex(nil, nil)
	}
	s.current.Store(ix)
}

// Builder computes one embedding per product and assembles Index snapshots.
type Builder struct {
	provider embedding.EmbeddingProvider
}

func NewBuilder(provider embedding.EmbeddingProvider) *Builder {
	return &Builder{provider: provider}
}

// Build embeds every product and returns an Index. A record whose embedding
// fails is skipped and recorded as a Gap; only context cancellation aborts
// the whole build.
func (b *Builder) Build(ctx context.Context, products []*entity.Product) (*Index, error) {
	entries := make([]Entry, 0, len(products))
	var gaps []Gap

	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := b.provider.Generate(ctx, EmbeddingText(p), "RETRIEVAL_DOCUMENT")
		if err != nil {
			gaps = append(gaps, Gap{ProductId: p.Id, Err: err})
			continue
		}

		entries = append(entries, Entry{
			ProductId: p.Id,
			Vector:    res.Embedding.Values,
			Snippet:   Snippet(p.Description),
		})
	}

	return NewIndex(entries, gaps), nil
}

// EmbeddingText is the document representation fed to the embedding model.
func EmbeddingText(p *entity.Product) string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	sb.WriteString("\n")
	sb.WriteString(p.Category)
	if p.Season != "" {
		sb.WriteString(" (")
		sb.WriteString(p.Season)
		sb.WriteString(")")
	}
	sb.WriteString("\n")
	sb.WriteString(p.Description)
	return sb.String()
}

// Snippet truncates a description to SnippetLength runes.
func Snippet(description string) string {
	runes := []rune(description)
	if len(runes) <= SnippetLength {
		return description
	}
	return string(runes[:SnippetLength])
}

// CosineSimilarity computes cos(a, b). Zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
