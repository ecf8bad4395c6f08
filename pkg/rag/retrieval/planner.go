package retrieval

import (
	"context"
	"errors"
	"fmt"

	"ai-mailroom-be/pkg/catalog"
	"ai-mailroom-be/pkg/embedding"
)

// ErrUnavailable means the embedding backend itself failed. "Found nothing"
// is never an error; it is an empty Result.
var ErrUnavailable = errors.New("retrieval unavailable")

// Query is one free-text product question tied to an email.
type Query struct {
	EmailId string
	Text    string
}

// Item is one retrieved catalog entry with its relevance and quoted snippet.
type Item struct {
	ProductId  string
	Similarity float64
	Snippet    string
	Tokens     int
}

// Result is an ordered, token-budgeted set of retrieved entries. Immutable
// once returned.
type Result struct {
	Items       []Item
	TotalTokens int
}

// Config encapsulates retrieval parameters.
type Config struct {
	InitialK      int     // first candidate batch size
	MinSimilarity float64 // below this, a candidate is noise and is dropped
}

func DefaultConfig() Config {
	return Config{
		InitialK:      5,
		MinSimilarity: 0.35,
	}
}

// Planner turns a query into a Result that fits a caller-specified token
// budget regardless of catalog size. Deterministic for a fixed index and a
// fixed query embedding.
type Planner struct {
	provider embedding.EmbeddingProvider
	store    *catalog.Store
	config   Config
}

func NewPlanner(provider embedding.EmbeddingProvider, store *catalog.Store, config Config) *Planner {
	if config.InitialK <= 0 {
		config.InitialK = DefaultConfig().InitialK
	}
	return &Planner{
		provider: provider,
		store:    store,
		config:   config,
	}
}

// EstimateTokens approximates the model-context cost of a snippet. The usual
// ~4 chars/token heuristic; a non-empty snippet costs at least one token.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// Plan embeds the query and greedily packs candidates in descending relevance
// order until the next snippet would exceed budgetTokens. k grows adaptively:
// more candidates are fetched only while budget remains and the index may
// hold more; packing stops when the budget is hit, a candidate falls below
// the similarity floor, or the index runs out. The result never exceeds the
// budget.
func (p *Planner) Plan(ctx context.Context, query Query, budgetTokens int) (*Result, error) {
	res, err := p.provider.Generate(ctx, query.Text, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	queryVec := res.Embedding.Values

	ix := p.store.Current()
	result := &Result{}

	k := p.config.InitialK
	consumed := 0

	for {
		matches := ix.Search(queryVec, k)

		for _, m := range matches[consumed:] {
			// Matches are sorted descending; everything after is lower still.
			if m.Similarity < p.config.MinSimilarity {
				return result, nil
			}
			cost := EstimateTokens(m.Entry.Snippet)
			if result.TotalTokens+cost > budgetTokens {
				return result, nil
			}
			result.Items = append(result.Items, Item{
				ProductId:  m.Entry.ProductId,
				Similarity: m.Similarity,
				Snippet:    m.Entry.Snippet,
				Tokens:     cost,
			})
			result.TotalTokens += cost
		}
		consumed = len(matches)

		if len(matches) < k {
			// Index exhausted.
			return result, nil
		}

		k *= 2
	}
}
