package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordProvider embeds text as keyword-presence vectors so similarity is
// fully deterministic without a model.
type keywordProvider struct {
	keywords []string
	failFor  map[string]error
}

func (p *keywordProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	for needle, err := range p.failFor {
		if strings.Contains(text, needle) {
			return nil, err
		}
	}
	values := make([]float32, len(p.keywords))
	lower := strings.ToLower(text)
	for i, kw := range p.keywords {
		if strings.Contains(lower, kw) {
			values[i] = 1
		}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: values},
	}, nil
}

func testProvider() *keywordProvider {
	return &keywordProvider{
		keywords: []string{"waterproof", "hiking", "boots", "jacket", "winter", "summer"},
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	ix := NewIndex([]Entry{
		{ProductId: "BOT-1", Vector: []float32{1, 1, 1, 0, 0, 0}, Snippet: "waterproof hiking boots"},
		{ProductId: "JCK-1", Vector: []float32{1, 0, 0, 1, 1, 0}, Snippet: "waterproof winter jacket"},
		{ProductId: "SND-1", Vector: []float32{0, 0, 0, 0, 0, 1}, Snippet: "summer sandals"},
	}, nil)

	query := []float32{1, 1, 1, 0, 0, 0} // waterproof hiking boots

	matches := ix.Search(query, 3)
	require.Len(t, matches, 3)
	assert.Equal(t, "BOT-1", matches[0].Entry.ProductId)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
	assert.Equal(t, "JCK-1", matches[1].Entry.ProductId)
	assert.Equal(t, "SND-1", matches[2].Entry.ProductId)
}

func TestSearchTieBreaksOnLowerProductId(t *testing.T) {
	// Two entries with identical vectors must rank by id, lower first.
	ix := NewIndex([]Entry{
		{ProductId: "ZZZ-9", Vector: []float32{1, 0}, Snippet: "b"},
		{ProductId: "AAA-1", Vector: []float32{1, 0}, Snippet: "a"},
		{ProductId: "MMM-5", Vector: []float32{1, 0}, Snippet: "m"},
	}, nil)

	matches := ix.Search([]float32{1, 0}, 3)
	require.Len(t, matches, 3)
	assert.Equal(t, "AAA-1", matches[0].Entry.ProductId)
	assert.Equal(t, "MMM-5", matches[1].Entry.ProductId)
	assert.Equal(t, "ZZZ-9", matches[2].Entry.ProductId)
}

func TestSearchIsDeterministicAcrossRebuilds(t *testing.T) {
	entries := []Entry{
		{ProductId: "A", Vector: []float32{1, 0, 1}},
		{ProductId: "B", Vector: []float32{0, 1, 1}},
		{ProductId: "C", Vector: []float32{1, 1, 0}},
	}
	query := []float32{1, 1, 1}

	first := NewIndex(entries, nil).Search(query, 3)

	// Same data, shuffled insertion order.
	shuffled := []Entry{entries[2], entries[0], entries[1]}
	second := NewIndex(shuffled, nil).Search(query, 3)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Entry.ProductId, second[i].Entry.ProductId)
		assert.Equal(t, first[i].Similarity, second[i].Similarity)
	}
}

func TestSearchKLargerThanIndex(t *testing.T) {
	ix := NewIndex([]Entry{
		{ProductId: "A", Vector: []float32{1}},
	}, nil)

	matches := ix.Search([]float32{1}, 50)
	assert.Len(t, matches, 1)
}

func TestEntryByProduct(t *testing.T) {
	ix := NewIndex([]Entry{
		{ProductId: "A", Vector: []float32{1}},
		{ProductId: "C", Vector: []float32{2}},
	}, nil)

	entry, ok := ix.EntryByProduct("C")
	require.True(t, ok)
	assert.Equal(t, "C", entry.ProductId)

	_, ok = ix.EntryByProduct("B")
	assert.False(t, ok)
}

func TestBuildSkipsFailedEmbeddings(t *testing.T) {
	provider := testProvider()
	provider.failFor = map[string]error{"Cursed": errors.New("model overloaded")}

	builder := NewBuilder(provider)
	ix, err := builder.Build(context.Background(), []*entity.Product{
		{Id: "OK-1", Name: "Hiking Boots", Description: "waterproof hiking boots"},
		{Id: "BAD-1", Name: "Cursed Jacket", Description: "never embeds"},
		{Id: "OK-2", Name: "Winter Jacket", Description: "waterproof winter jacket"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, ix.Len())
	require.Len(t, ix.Gaps(), 1)
	assert.Equal(t, "BAD-1", ix.Gaps()[0].ProductId)
	assert.Error(t, ix.Gaps()[0].Err)

	// Skipped products are absent from search results entirely.
	for _, m := range ix.Search([]float32{1, 1, 1, 1, 1, 1}, 10) {
		assert.NotEqual(t, "BAD-1", m.Entry.ProductId)
	}
}

func TestBuildAbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder := NewBuilder(testProvider())
	_, err := builder.Build(ctx, []*entity.Product{{Id: "A", Name: "x"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStorePublishSwapsAtomically(t *testing.T) {
	store := NewStore()

	// A store starts out serving an empty index, never nil.
	require.NotNil(t, store.Current())
	assert.Equal(t, 0, store.Current().Len())

	old := store.Current()
	ix := NewIndex([]Entry{{ProductId: "A", Vector: []float32{1}}}, nil)
	store.Publish(ix)

	assert.Same(t, ix, store.Current())
	// The previous snapshot is untouched for readers still holding it.
	assert.Equal(t, 0, old.Len())
}

func TestStorePublishNilServesEmpty(t *testing.T) {
	store := NewStore()
	store.Publish(nil)
	require.NotNil(t, store.Current())
	assert.Equal(t, 0, store.Current().Len())
}

func TestSnippetTruncation(t *testing.T) {
	long := strings.Repeat("a", SnippetLength+50)
	assert.Equal(t, SnippetLength, len([]rune(Snippet(long))))

	short := "short description"
	assert.Equal(t, short, Snippet(short))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestEmbeddingTextLayout(t *testing.T) {
	p := &entity.Product{
		Id:          "BOT-1",
		Name:        "Trail Boots",
		Category:    "Footwear",
		Season:      "Winter",
		Description: "waterproof hiking boots",
	}
	text := EmbeddingText(p)
	assert.Equal(t, "Trail Boots\nFootwear (Winter)\nwaterproof hiking boots", text)
}

func TestLargeIndexSearchStable(t *testing.T) {
	entries := make([]Entry, 0, 1000)
	for i := 0; i < 1000; i++ {
		entries = append(entries, Entry{
			ProductId: fmt.Sprintf("SKU-%04d", i),
			Vector:    []float32{float32(i % 7), float32(i % 11), 1},
		})
	}
	ix := NewIndex(entries, nil)

	a := ix.Search([]float32{3, 5, 1}, 25)
	b := ix.Search([]float32{3, 5, 1}, 25)
	require.Len(t, a, 25)
	for i := range a {
		assert.Equal(t, a[i].Entry.ProductId, b[i].Entry.ProductId)
	}
}
