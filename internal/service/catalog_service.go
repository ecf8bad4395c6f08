package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-mailroom-be/internal/dto"
	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/ledger"
	"ai-mailroom-be/internal/pkg/logger"
	"ai-mailroom-be/internal/repository/specification"
	"ai-mailroom-be/internal/repository/unitofwork"
	"ai-mailroom-be/pkg/catalog"
	"ai-mailroom-be/pkg/events"
	"ai-mailroom-be/pkg/rag/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type ICatalogService interface {
	ImportProducts(ctx context.Context, request *dto.ImportProductsRequest) ([]*dto.ProductResponse, error)
	ListProducts(ctx context.Context, category string, limit, offset int) ([]*dto.ProductResponse, error)
	DeleteProduct(ctx context.Context, productId string) error
	RebuildIndex(ctx context.Context) (*dto.IndexStatusResponse, error)
	RestoreIndex(ctx context.Context) (*dto.IndexStatusResponse, error)
	IndexStatus(ctx context.Context) *dto.IndexStatusResponse
	SemanticSearch(ctx context.Context, query string, budgetTokens int) (*dto.SemanticSearchResponse, error)
	PersistStock(ctx context.Context) error
	RestoreLedger(ctx context.Context) error
}

type catalogService struct {
	uowFactory  unitofwork.RepositoryFactory
	builder     *catalog.Builder
	store       *catalog.Store
	stockLedger *ledger.Ledger
	planner     *retrieval.Planner
	pubSub      *gochannel.GoChannel
	topicName   string
	publisher   OutcomePublisher
	sysLogger   logger.ILogger
}

func NewCatalogService(
	uowFactory unitofwork.RepositoryFactory,
	builder *catalog.Builder,
	store *catalog.Store,
	stockLedger *ledger.Ledger,
	planner *retrieval.Planner,
	pubSub *gochannel.GoChannel,
	topicName string,
	publisher OutcomePublisher,
	sysLogger logger.ILogger,
) ICatalogService {
	return &catalogService{
		uowFactory:  uowFactory,
		builder:     builder,
		store:       store,
		stockLedger: stockLedger,
		planner:     planner,
		pubSub:      pubSub,
		topicName:   topicName,
		publisher:   publisher,
		sysLogger:   sysLogger,
	}
}

// ImportProducts stores the records, seeds the ledger and queues one embed
// job per product. The index catches up asynchronously via the consumer.
func (cs *catalogService) ImportProducts(ctx context.Context, request *dto.ImportProductsRequest) ([]*dto.ProductResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	products := make([]*entity.Product, len(request.Products))
	for i, p := range request.Products {
		products[i] = &entity.Product{
			Id:          p.Id,
			Name:        p.Name,
			Category:    p.Category,
			Stock:       p.Stock,
			Description: p.Description,
			Season:      p.Season,
		}
	}

	if err := uow.ProductRepository().CreateBulk(ctx, products); err != nil {
		return nil, fmt.Errorf("import products: %w", err)
	}

	// Seed ledger entries so orders against new products resolve immediately.
	snapshot := cs.stockLedger.Snapshot()
	for _, p := range products {
		snapshot[p.Id] = p.Stock
	}
	cs.stockLedger.Load(snapshot)

	for _, p := range products {
		payload, err := json.Marshal(dto.PublishEmbedProductMessage{ProductId: p.Id})
		if err != nil {
			continue
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := cs.pubSub.Publish(cs.topicName, msg); err != nil {
			cs.sysLogger.Error("catalog", "failed to queue embed job", map[string]interface{}{
				"product_id": p.Id,
				"error":      err.Error(),
			})
		}
	}

	responses := make([]*dto.ProductResponse, len(products))
	for i, p := range products {
		responses[i] = &dto.ProductResponse{
			Id:          p.Id,
			Name:        p.Name,
			Category:    p.Category,
			Stock:       p.Stock,
			Description: p.Description,
			Season:      p.Season,
		}
	}
	return responses, nil
}

// ListProducts pages through the catalog, newest ids last, optionally
// narrowed to one category.
func (cs *catalogService) ListProducts(ctx context.Context, category string, limit, offset int) ([]*dto.ProductResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "id"},
		specification.Pagination{Limit: limit, Offset: offset},
	}
	if category != "" {
		specs = append([]specification.Specification{specification.ByCategory{Category: category}}, specs...)
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	products, err := uow.ProductRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	responses := make([]*dto.ProductResponse, len(products))
	for i, p := range products {
		responses[i] = &dto.ProductResponse{
			Id:          p.Id,
			Name:        p.Name,
			Category:    p.Category,
			Stock:       p.Stock,
			Description: p.Description,
			Season:      p.Season,
		}
	}
	return responses, nil
}

// DeleteProduct removes a product everywhere it lives: its row and embedding
// row go in one transaction, then the ledger entry and the serving snapshot.
func (cs *catalogService) DeleteProduct(ctx context.Context, productId string) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: productId})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", productId, err)
	}
	if existing == nil {
		return ledger.ErrUnknownProduct
	}

	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("delete product %s: %w", productId, err)
	}
	if err := uow.ProductRepository().Delete(ctx, productId); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("delete product %s: %w", productId, err)
	}
	if err := uow.ProductEmbeddingRepository().DeleteByProductId(ctx, productId); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("delete embedding for %s: %w", productId, err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("delete product %s: %w", productId, err)
	}

	cs.stockLedger.Remove(productId)
	cs.removeIndexEntry(productId)

	cs.sysLogger.Info("catalog", "product deleted", map[string]interface{}{
		"product_id": productId,
	})
	return nil
}

// removeIndexEntry publishes a fresh snapshot without the product. Readers of
// the old snapshot keep it untouched.
func (cs *catalogService) removeIndexEntry(productId string) {
	current := cs.store.Current()

	entries := make([]catalog.Entry, 0, current.Len())
	for _, e := range current.Entries() {
		if e.ProductId != productId {
			entries = append(entries, e)
		}
	}

	var gaps []catalog.Gap
	for _, g := range current.Gaps() {
		if g.ProductId != productId {
			gaps = append(gaps, g)
		}
	}

	cs.store.Publish(catalog.NewIndex(entries, gaps))
}

// RebuildIndex re-embeds the full catalog and publishes a fresh snapshot.
// Records whose embedding fails are skipped and reported as gaps.
func (cs *catalogService) RebuildIndex(ctx context.Context) (*dto.IndexStatusResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	products, err := uow.ProductRepository().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products for rebuild: %w", err)
	}

	ix, err := cs.builder.Build(ctx, products)
	if err != nil {
		return nil, fmt.Errorf("index build: %w", err)
	}

	// Persist the entries so the next restart can restore without re-embedding.
	embeddings := make([]*entity.ProductEmbedding, 0, ix.Len())
	for _, e := range ix.Entries() {
		embeddings = append(embeddings, &entity.ProductEmbedding{
			ProductId:      e.ProductId,
			Snippet:        e.Snippet,
			EmbeddingValue: e.Vector,
		})
	}
	if err := uow.ProductEmbeddingRepository().UpsertBulk(ctx, embeddings); err != nil {
		cs.sysLogger.Warn("catalog", "failed to persist index entries", map[string]interface{}{
			"error": err.Error(),
		})
	}

	cs.store.Publish(ix)
	cs.sysLogger.Info("catalog", "index rebuilt", map[string]interface{}{
		"entries": ix.Len(),
		"gaps":    len(ix.Gaps()),
	})

	if cs.publisher != nil {
		if err := cs.publisher.Publish(ctx, events.NewIndexRebuiltEvent(ix.Len(), len(ix.Gaps()))); err != nil {
			cs.sysLogger.Warn("catalog", "index event publish failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return indexStatus(ix), nil
}

// RestoreIndex rebuilds the serving snapshot from persisted embeddings
// without calling the embedding backend. Used at startup.
func (cs *catalogService) RestoreIndex(ctx context.Context) (*dto.IndexStatusResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	stored, err := uow.ProductEmbeddingRepository().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored embeddings: %w", err)
	}

	entries := make([]catalog.Entry, len(stored))
	for i, e := range stored {
		entries[i] = catalog.Entry{
			ProductId: e.ProductId,
			Vector:    e.EmbeddingValue,
			Snippet:   e.Snippet,
		}
	}

	ix := catalog.NewIndex(entries, nil)
	cs.store.Publish(ix)
	return indexStatus(ix), nil
}

func (cs *catalogService) IndexStatus(ctx context.Context) *dto.IndexStatusResponse {
	return indexStatus(cs.store.Current())
}

func (cs *catalogService) SemanticSearch(ctx context.Context, query string, budgetTokens int) (*dto.SemanticSearchResponse, error) {
	result, err := cs.planner.Plan(ctx, retrieval.Query{Text: query}, budgetTokens)
	if err != nil {
		return nil, err
	}

	items := make([]dto.RetrievedItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.RetrievedItemResponse{
			ProductId:  item.ProductId,
			Similarity: item.Similarity,
			Snippet:    item.Snippet,
			Tokens:     item.Tokens,
		}
	}
	return &dto.SemanticSearchResponse{Query: query, Results: items}, nil
}

// PersistStock writes the ledger snapshot back to the products table; the
// only state that must survive a restart.
func (cs *catalogService) PersistStock(ctx context.Context) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	return uow.ProductRepository().UpdateStockLevels(ctx, cs.stockLedger.Snapshot())
}

// RestoreLedger loads stock levels from the products table into the ledger.
func (cs *catalogService) RestoreLedger(ctx context.Context) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	products, err := uow.ProductRepository().FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load products for ledger: %w", err)
	}

	stock := make(map[string]int, len(products))
	for _, p := range products {
		stock[p.Id] = p.Stock
	}
	cs.stockLedger.Load(stock)
	return nil
}

func indexStatus(ix *catalog.Index) *dto.IndexStatusResponse {
	status := &dto.IndexStatusResponse{Entries: ix.Len()}
	for _, gap := range ix.Gaps() {
		status.Gaps = append(status.Gaps, gap.ProductId)
	}
	return status
}
