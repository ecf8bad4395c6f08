package service

import (
	"context"

	"ai-mailroom-be/internal/dto"
	"ai-mailroom-be/internal/pkg/logger"
	"ai-mailroom-be/internal/pkg/mailer"
	"ai-mailroom-be/internal/repository/specification"
	"ai-mailroom-be/internal/repository/unitofwork"
	"ai-mailroom-be/pkg/rag/response"
	"ai-mailroom-be/pkg/rag/retrieval"
)

type IInquiryService interface {
	Answer(ctx context.Context, request *dto.InquiryRequest) (*dto.InquiryResponse, error)
}

type inquiryService struct {
	planner      *retrieval.Planner
	generator    *response.Generator
	uowFactory   unitofwork.RepositoryFactory
	emailSender  mailer.IEmailService
	sysLogger    logger.ILogger
	budgetTokens int
}

func NewInquiryService(
	planner *retrieval.Planner,
	generator *response.Generator,
	uowFactory unitofwork.RepositoryFactory,
	emailSender mailer.IEmailService,
	sysLogger logger.ILogger,
	budgetTokens int,
) IInquiryService {
	return &inquiryService{
		planner:      planner,
		generator:    generator,
		uowFactory:   uowFactory,
		emailSender:  emailSender,
		sysLogger:    sysLogger,
		budgetTokens: budgetTokens,
	}
}

// Answer retrieves the most relevant catalog entries within the token
// budget and grounds an LLM reply in them. When the sender address is
// present the reply is also mailed back.
func (s *inquiryService) Answer(ctx context.Context, request *dto.InquiryRequest) (*dto.InquiryResponse, error) {
	budget := request.BudgetTokens
	if budget <= 0 {
		budget = s.budgetTokens
	}

	query := retrieval.Query{
		EmailId: request.Email.Id,
		Text:    request.Email.Subject + "\n" + request.Email.Message,
	}

	result, err := s.planner.Plan(ctx, query, budget)
	if err != nil {
		return nil, err
	}

	names := s.productNames(ctx, result)

	reply, err := s.generator.InquiryAnswer(ctx, request.Email.Message, result, names)
	if err != nil {
		return nil, err
	}

	if request.Email.From != "" {
		if sendErr := s.emailSender.SendReply(request.Email.From, "Re: "+request.Email.Subject, reply); sendErr != nil {
			s.sysLogger.Warn("inquiry", "reply send failed", map[string]interface{}{
				"email_id": request.Email.Id,
				"error":    sendErr.Error(),
			})
		}
	}

	items := make([]dto.RetrievedItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.RetrievedItemResponse{
			ProductId:  item.ProductId,
			Name:       names[item.ProductId],
			Similarity: item.Similarity,
			Snippet:    item.Snippet,
			Tokens:     item.Tokens,
		}
	}

	return &dto.InquiryResponse{
		EmailId:     request.Email.Id,
		Answer:      reply,
		Items:       items,
		TotalTokens: result.TotalTokens,
	}, nil
}

// productNames resolves display names for the retrieved products. Lookup
// failures degrade to SKU-only replies rather than failing the inquiry.
func (s *inquiryService) productNames(ctx context.Context, result *retrieval.Result) map[string]string {
	if len(result.Items) == 0 {
		return nil
	}

	ids := make([]string, len(result.Items))
	for i, item := range result.Items {
		ids[i] = item.ProductId
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	products, err := uow.ProductRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		s.sysLogger.Warn("inquiry", "product name lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.Id] = p.Name
	}
	return names
}
