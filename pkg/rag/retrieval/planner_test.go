package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ai-mailroom-be/pkg/catalog"
	"ai-mailroom-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordProvider embeds text as keyword-presence vectors so ranking is
// deterministic without a real model.
type keywordProvider struct {
	keywords []string
	err      error
}

func (p *keywordProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if p.err != nil {
		return nil, p.err
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

var outdoorKeywords = []string{"waterproof", "hiking", "boots", "jacket", "winter", "summer", "sandals"}

func vectorFor(text string) []float32 {
	values := make([]float32, len(outdoorKeywords))
	lower := strings.ToLower(text)
	for i, kw := range outdoorKeywords {
		if strings.Contains(lower, kw) {
			values[i] = 1
		}
	}
	return values
}

func outdoorStore() *catalog.Store {
	store := catalog.NewStore()
	store.Publish(catalog.NewIndex([]catalog.Entry{
		{ProductId: "BOT-1", Vector: vectorFor("waterproof hiking boots"), Snippet: "Rugged waterproof hiking boots with ankle support."},
		{ProductId: "BOT-2", Vector: vectorFor("hiking boots"), Snippet: "Lightweight hiking boots for summer trails."},
		{ProductId: "JCK-1", Vector: vectorFor("waterproof winter jacket"), Snippet: "Insulated waterproof jacket for harsh winters."},
		{ProductId: "SND-1", Vector: vectorFor("summer sandals"), Snippet: "Breathable summer sandals."},
	}, nil))
	return store
}

func newTestPlanner(store *catalog.Store) *Planner {
	return NewPlanner(&keywordProvider{keywords: outdoorKeywords}, store, DefaultConfig())
}

func TestPlanRanksMostRelevantFirst(t *testing.T) {
	planner := newTestPlanner(outdoorStore())

	result, err := planner.Plan(context.Background(), Query{
		EmailId: "E001",
		Text:    "Do you sell waterproof hiking boots?",
	}, 500)
	require.NoError(t, err)
	require.NotEmpty(t, result.Items)

	assert.Equal(t, "BOT-1", result.Items[0].ProductId)
	for i := 1; i < len(result.Items); i++ {
		assert.GreaterOrEqual(t, result.Items[i-1].Similarity, result.Items[i].Similarity)
	}
}

func TestPlanNeverExceedsBudget(t *testing.T) {
	store := outdoorStore()
	planner := newTestPlanner(store)

	for _, budget := range []int{1, 5, 10, 25, 100, 500} {
		result, err := planner.Plan(context.Background(), Query{Text: "waterproof hiking boots jacket winter"}, budget)
		require.NoError(t, err)
		assert.LessOrEqual(t, result.TotalTokens, budget, "budget %d", budget)

		sum := 0
		for _, item := range result.Items {
			sum += item.Tokens
		}
		assert.Equal(t, sum, result.TotalTokens)
	}
}

func TestPlanTinyBudgetYieldsEmptyResult(t *testing.T) {
	planner := newTestPlanner(outdoorStore())

	// Every snippet costs more than one token, so nothing fits.
	result, err := planner.Plan(context.Background(), Query{Text: "waterproof hiking boots"}, 1)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalTokens)
}

func TestPlanDropsIrrelevantCandidates(t *testing.T) {
	planner := newTestPlanner(outdoorStore())

	// Sandals share no keywords with this query; similarity is 0 and falls
	// below the threshold, so they never appear no matter the budget.
	result, err := planner.Plan(context.Background(), Query{Text: "waterproof winter jacket"}, 10000)
	require.NoError(t, err)
	for _, item := range result.Items {
		assert.NotEqual(t, "SND-1", item.ProductId)
	}
}

func TestPlanEmptyIndex(t *testing.T) {
	planner := newTestPlanner(catalog.NewStore())

	result, err := planner.Plan(context.Background(), Query{Text: "anything"}, 500)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestPlanBackendFailure(t *testing.T) {
	provider := &keywordProvider{keywords: outdoorKeywords, err: errors.New("connection refused")}
	planner := NewPlanner(provider, outdoorStore(), DefaultConfig())

	_, err := planner.Plan(context.Background(), Query{Text: "boots"}, 500)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPlanAdaptiveKReachesDeepCatalog(t *testing.T) {
	// A catalog larger than InitialK where every entry is relevant; the
	// planner must keep widening k until the budget is spent.
	entries := make([]catalog.Entry, 0, 40)
	for i := 0; i < 40; i++ {
		entries = append(entries, catalog.Entry{
			ProductId: fmt.Sprintf("BOT-%03d", i),
			Vector:    vectorFor("waterproof hiking boots"),
			Snippet:   "Waterproof hiking boots, forty flavours.",
		})
	}
	store := catalog.NewStore()
	store.Publish(catalog.NewIndex(entries, nil))

	planner := newTestPlanner(store)
	result, err := planner.Plan(context.Background(), Query{Text: "waterproof hiking boots"}, 10000)
	require.NoError(t, err)

	cfg := DefaultConfig()
	assert.Greater(t, len(result.Items), cfg.InitialK)
	assert.Len(t, result.Items, 40)
}

func TestPlanPacksBeyondFiftyCandidates(t *testing.T) {
	// With ample budget and every entry above the similarity floor, packing
	// keeps going until the index is exhausted; there is no candidate cap.
	entries := make([]catalog.Entry, 0, 120)
	for i := 0; i < 120; i++ {
		entries = append(entries, catalog.Entry{
			ProductId: fmt.Sprintf("BOT-%03d", i),
			Vector:    vectorFor("waterproof hiking boots"),
			Snippet:   "Waterproof boots.",
		})
	}
	store := catalog.NewStore()
	store.Publish(catalog.NewIndex(entries, nil))

	planner := newTestPlanner(store)
	result, err := planner.Plan(context.Background(), Query{Text: "waterproof hiking boots"}, 100000)
	require.NoError(t, err)

	assert.Len(t, result.Items, 120)
}

func TestPlanFindsNeedleInLargeCatalog(t *testing.T) {
	// One relevant product buried in a large catalog of unrelated entries.
	entries := make([]catalog.Entry, 0, 10001)
	for i := 0; i < 10000; i++ {
		entries = append(entries, catalog.Entry{
			ProductId: fmt.Sprintf("SCARF-%05d", i),
			Vector:    vectorFor("winter"),
			Snippet:   "Wool scarf in assorted colours.",
		})
	}
	entries = append(entries, catalog.Entry{
		ProductId: "BOT-1",
		Vector:    vectorFor("waterproof hiking boots"),
		Snippet:   "Rugged waterproof hiking boots with ankle support.",
	})

	store := catalog.NewStore()
	store.Publish(catalog.NewIndex(entries, nil))
	planner := newTestPlanner(store)

	result, err := planner.Plan(context.Background(), Query{Text: "waterproof hiking boots"}, 500)
	require.NoError(t, err)

	require.NotEmpty(t, result.Items)
	assert.Equal(t, "BOT-1", result.Items[0].ProductId)
	assert.LessOrEqual(t, result.TotalTokens, 500)
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{text: "", want: 0},
		{text: "a", want: 1},
		{text: "abcd", want: 1},
		{text: strings.Repeat("x", 400), want: 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.text), "text length %d", len(tt.text))
	}
}
