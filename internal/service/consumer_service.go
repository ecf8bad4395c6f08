package service

import (
	"context"
	"encoding/json"

	"ai-mailroom-be/internal/dto"
	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/pkg/logger"
	"ai-mailroom-be/internal/repository/specification"
	"ai-mailroom-be/internal/repository/unitofwork"
	"ai-mailroom-be/pkg/catalog"
	"ai-mailroom-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	StartEmbedProductConsumer(ctx context.Context) error
}

// consumerService drains the embed-job topic: one message per product,
// embed, persist, then fold the entry into the serving snapshot.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	store             *catalog.Store
	sysLogger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	store *catalog.Store,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		store:             store,
		sysLogger:         sysLogger,
	}
}

func (s *consumerService) StartEmbedProductConsumer(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.handleEmbedProduct(ctx, msg)
			msg.Ack()
		}
	}()

	s.sysLogger.Info("consumer", "embed-product consumer started", map[string]interface{}{
		"topic": s.topicName,
	})
	return nil
}

func (s *consumerService) handleEmbedProduct(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedProductMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.sysLogger.Error("consumer", "malformed embed message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: payload.ProductId})
	if err != nil || product == nil {
		s.sysLogger.Warn("consumer", "embed job for unknown product", map[string]interface{}{
			"product_id": payload.ProductId,
		})
		return
	}

	res, err := s.embeddingProvider.Generate(ctx, catalog.EmbeddingText(product), "RETRIEVAL_DOCUMENT")
	if err != nil {
		// Skip and record; a later rebuild can fill the gap.
		s.sysLogger.Warn("consumer", "embedding failed, product skipped", map[string]interface{}{
			"product_id": product.Id,
			"error":      err.Error(),
		})
		s.recordGap(product.Id, err)
		return
	}

	snippet := catalog.Snippet(product.Description)
	if err := uow.ProductEmbeddingRepository().Upsert(ctx, &entity.ProductEmbedding{
		ProductId:      product.Id,
		Snippet:        snippet,
		EmbeddingValue: res.Embedding.Values,
	}); err != nil {
		s.sysLogger.Error("consumer", "failed to persist embedding", map[string]interface{}{
			"product_id": product.Id,
			"error":      err.Error(),
		})
	}

	s.mergeEntry(catalog.Entry{
		ProductId: product.Id,
		Vector:    res.Embedding.Values,
		Snippet:   snippet,
	})
}

// mergeEntry publishes a new snapshot with the entry added or replaced.
// Consumers of the old snapshot keep reading it untouched.
func (s *consumerService) mergeEntry(entry catalog.Entry) {
	current := s.store.Current()

	entries := make([]catalog.Entry, 0, current.Len()+1)
	for _, e := range current.Entries() {
		if e.ProductId != entry.ProductId {
			entries = append(entries, e)
		}
	}
	entries = append(entries, entry)

	var gaps []catalog.Gap
	for _, g := range current.Gaps() {
		if g.ProductId != entry.ProductId {
			gaps = append(gaps, g)
		}
	}

	s.store.Publish(catalog.NewIndex(entries, gaps))
}

func (s *consumerService) recordGap(productId string, cause error) {
	current := s.store.Current()

	gaps := make([]catalog.Gap, 0, len(current.Gaps())+1)
	for _, g := range current.Gaps() {
		if g.ProductId != productId {
			gaps = append(gaps, g)
		}
	}
	gaps = append(gaps, catalog.Gap{ProductId: productId, Err: cause})

	s.store.Publish(catalog.NewIndex(current.Entries(), gaps))
}
