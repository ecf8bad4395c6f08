package service

import (
	"context"
	"fmt"
	"strings"

	"ai-mailroom-be/internal/constant"
	"ai-mailroom-be/internal/dto"
	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/pkg/logger"
	"ai-mailroom-be/internal/repository/memory"
	"ai-mailroom-be/internal/repository/unitofwork"
	"ai-mailroom-be/pkg/llm"
)

type IClassifierService interface {
	Classify(ctx context.Context, email *entity.Email) (entity.EmailCategory, error)
	ClassifyBatch(ctx context.Context, request *dto.ClassifyBatchRequest) ([]*dto.ClassificationResponse, error)
}

type classifierService struct {
	llmProvider llm.LLMProvider
	cache       *memory.ClassificationCache
	uowFactory  unitofwork.RepositoryFactory
	sysLogger   logger.ILogger
}

func NewClassifierService(
	llmProvider llm.LLMProvider,
	cache *memory.ClassificationCache,
	uowFactory unitofwork.RepositoryFactory,
	sysLogger logger.ILogger,
) IClassifierService {
	return &classifierService{
		llmProvider: llmProvider,
		cache:       cache,
		uowFactory:  uowFactory,
		sysLogger:   sysLogger,
	}
}

// Classify decides whether an email is an order request or a product
// inquiry. Identical content hits the cache instead of the model.
func (s *classifierService) Classify(ctx context.Context, email *entity.Email) (entity.EmailCategory, error) {
	key := s.cache.Key(email)
	if category, ok := s.cache.Get(key); ok {
		return category, nil
	}

	prompt := buildClassifierPrompt(email)
	raw, err := s.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return entity.CategoryUnclassified, fmt.Errorf("classify email %s: %w", email.Id, err)
	}

	category := parseCategory(raw)
	s.cache.Save(key, category)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.EmailClassificationRepository().Upsert(ctx, &entity.EmailClassification{
		EmailId:  email.Id,
		Category: category,
	}); err != nil {
		s.sysLogger.Warn("classifier", "failed to persist classification", map[string]interface{}{
			"email_id": email.Id,
			"error":    err.Error(),
		})
	}

	return category, nil
}

// ClassifyBatch classifies each email independently. A failure on one email
// yields an unclassified result with the error attached; the rest proceed.
func (s *classifierService) ClassifyBatch(ctx context.Context, request *dto.ClassifyBatchRequest) ([]*dto.ClassificationResponse, error) {
	responses := make([]*dto.ClassificationResponse, 0, len(request.Emails))

	for _, req := range request.Emails {
		email := &entity.Email{
			Id:      req.Id,
			From:    req.From,
			Subject: req.Subject,
			Message: req.Message,
		}

		category, err := s.Classify(ctx, email)
		resp := &dto.ClassificationResponse{
			EmailId:  email.Id,
			Category: string(category),
		}
		if err != nil {
			resp.Error = err.Error()
		}
		responses = append(responses, resp)
	}

	return responses, nil
}

func buildClassifierPrompt(email *entity.Email) string {
	subject := truncate(email.Subject, constant.MaxClassifierInputLen)
	message := truncate(email.Message, constant.MaxClassifierInputLen)
	return fmt.Sprintf(constant.ClassifierPromptTemplate, subject, message)
}

// parseCategory maps a raw model reply onto a known category. Any reply
// containing "order" counts as an order request; anything else defaults to
// a product inquiry so the email still gets a useful response.
func parseCategory(raw string) entity.EmailCategory {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(normalized, "order") {
		return entity.CategoryOrderRequest
	}
	return entity.CategoryProductInquiry
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
