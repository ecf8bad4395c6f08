package service

import (
	"context"
	"fmt"
	"sync"

	"ai-mailroom-be/internal/dto"
	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/ledger"
	"ai-mailroom-be/internal/pkg/logger"
	"ai-mailroom-be/internal/pkg/mailer"
	"ai-mailroom-be/internal/repository/specification"
	"ai-mailroom-be/internal/repository/unitofwork"
	"ai-mailroom-be/pkg/catalog"
	"ai-mailroom-be/pkg/events"
	"ai-mailroom-be/pkg/rag/response"
)

const (
	// batchWorkers bounds concurrent email processing in ProcessBatch.
	batchWorkers = 4
	// maxAlternatives caps substitute suggestions per out-of-stock product.
	maxAlternatives = 3
	// alternativeCandidates is how many neighbours to probe before the
	// in-stock filter; some will be the product itself or sold out.
	alternativeCandidates = 10
)

// OutcomePublisher pushes outcome events to the message broker. Nil is
// tolerated; running without a broker just skips publishing.
type OutcomePublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IOrderService interface {
	Process(ctx context.Context, request *dto.ProcessOrderRequest) (*dto.ProcessOrderResponse, error)
	ProcessBatch(ctx context.Context, request *dto.ProcessBatchRequest) (*dto.BatchSummaryResponse, error)
	Outcomes(ctx context.Context, emailId string) ([]dto.OrderOutcomeResponse, error)
}

type orderService struct {
	uowFactory  unitofwork.RepositoryFactory
	stockLedger *ledger.Ledger
	store       *catalog.Store
	generator   *response.Generator
	publisher   OutcomePublisher
	emailSender mailer.IEmailService
	sysLogger   logger.ILogger
}

func NewOrderService(
	uowFactory unitofwork.RepositoryFactory,
	stockLedger *ledger.Ledger,
	store *catalog.Store,
	generator *response.Generator,
	publisher OutcomePublisher,
	emailSender mailer.IEmailService,
	sysLogger logger.ILogger,
) IOrderService {
	return &orderService{
		uowFactory:  uowFactory,
		stockLedger: stockLedger,
		store:       store,
		generator:   generator,
		publisher:   publisher,
		emailSender: emailSender,
		sysLogger:   sysLogger,
	}
}

// Process fulfils one email's order lines strictly in the order given.
// Every line yields exactly one outcome: created when the full quantity
// was reserved, out_of_stock otherwise. A later line can succeed after an
// earlier one failed; partial fulfilment is a valid result.
func (s *orderService) Process(ctx context.Context, request *dto.ProcessOrderRequest) (*dto.ProcessOrderResponse, error) {
	lines := make([]entity.OrderLine, len(request.Lines))
	for i, l := range request.Lines {
		lines[i] = entity.OrderLine{
			EmailId:   request.EmailId,
			ProductId: l.ProductId,
			Quantity:  l.Quantity,
		}
	}

	outcomes := make([]*entity.OrderOutcome, 0, len(lines))
	for _, line := range lines {
		status, err := s.stockLedger.Reserve(line.ProductId, line.Quantity)
		if err != nil {
			// Unknown product or non-positive quantity is a caller error,
			// not a fulfilment result. Lines before this one keep their
			// reservations.
			return nil, fmt.Errorf("line %s x%d: %w", line.ProductId, line.Quantity, err)
		}

		outcomes = append(outcomes, &entity.OrderOutcome{
			EmailId:   line.EmailId,
			ProductId: line.ProductId,
			Quantity:  line.Quantity,
			Status:    status,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.OrderOutcomeRepository().CreateBulk(ctx, outcomes); err != nil {
		s.sysLogger.Error("order", "failed to persist outcomes", map[string]interface{}{
			"email_id": request.EmailId,
			"error":    err.Error(),
		})
	}

	s.publishOutcomes(ctx, outcomes)

	reply, err := s.composeReply(ctx, outcomes)
	if err != nil {
		s.sysLogger.Warn("order", "reply generation failed", map[string]interface{}{
			"email_id": request.EmailId,
			"error":    err.Error(),
		})
	}
	s.sendReply(request, reply)

	responses := make([]dto.OrderOutcomeResponse, len(outcomes))
	for i, o := range outcomes {
		responses[i] = dto.OrderOutcomeResponse{
			EmailId:   o.EmailId,
			ProductId: o.ProductId,
			Quantity:  o.Quantity,
			Status:    string(o.Status),
		}
	}

	return &dto.ProcessOrderResponse{
		EmailId:  request.EmailId,
		Outcomes: responses,
		Reply:    reply,
	}, nil
}

// ProcessBatch fans emails out to a bounded worker pool. One email's
// failure never blocks the others; it lands in the summary error map.
// Inventory changes are computed against a snapshot taken before the run.
func (s *orderService) ProcessBatch(ctx context.Context, request *dto.ProcessBatchRequest) (*dto.BatchSummaryResponse, error) {
	before := s.stockLedger.Snapshot()

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		processed = make(map[string]dto.ProcessOrderResponse, len(request.Orders))
		failures  = make(map[string]string)
	)

	sem := make(chan struct{}, batchWorkers)
	for i := range request.Orders {
		order := request.Orders[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			resp, err := s.Process(ctx, &order)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[order.EmailId] = err.Error()
				return
			}
			processed[order.EmailId] = *resp
		}()
	}
	wg.Wait()

	after := s.stockLedger.Snapshot()
	changes := make(map[string]int)
	for id, was := range before {
		if now := after[id]; now != was {
			changes[id] = now - was
		}
	}

	summary := &dto.BatchSummaryResponse{
		SuccessCount:     len(processed),
		FailedCount:      len(failures),
		Processed:        processed,
		Errors:           failures,
		InventoryChanges: changes,
	}

	s.sysLogger.Info("order", "batch processed", map[string]interface{}{
		"success": summary.SuccessCount,
		"failed":  summary.FailedCount,
	})
	return summary, nil
}

func (s *orderService) Outcomes(ctx context.Context, emailId string) ([]dto.OrderOutcomeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	outcomes, err := uow.OrderOutcomeRepository().FindAll(ctx, specification.ByEmailID{EmailID: emailId})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.OrderOutcomeResponse, len(outcomes))
	for i, o := range outcomes {
		responses[i] = dto.OrderOutcomeResponse{
			EmailId:   o.EmailId,
			ProductId: o.ProductId,
			Quantity:  o.Quantity,
			Status:    string(o.Status),
		}
	}
	return responses, nil
}

func (s *orderService) publishOutcomes(ctx context.Context, outcomes []*entity.OrderOutcome) {
	if s.publisher == nil {
		return
	}
	for _, o := range outcomes {
		if err := s.publisher.Publish(ctx, events.NewOrderOutcomeEvent(o)); err != nil {
			s.sysLogger.Warn("order", "outcome event publish failed", map[string]interface{}{
				"email_id":   o.EmailId,
				"product_id": o.ProductId,
				"error":      err.Error(),
			})
		}
	}
}

// composeReply builds the customer-facing email text: a confirmation for
// fulfilled lines, plus a notice with in-stock substitutes for the rest.
func (s *orderService) composeReply(ctx context.Context, outcomes []*entity.OrderOutcome) (string, error) {
	names, err := s.productNames(ctx, outcomes)
	if err != nil {
		return "", err
	}

	var created, unavailable []*entity.OrderOutcome
	for _, o := range outcomes {
		if o.Status == entity.OutcomeCreated {
			created = append(created, o)
		} else {
			unavailable = append(unavailable, o)
		}
	}

	var reply string
	if len(created) > 0 {
		reply = s.generator.OrderConfirmation(created, names)
	}
	if len(unavailable) > 0 {
		alternatives := s.suggestAlternatives(unavailable)
		s.hydrateAlternativeNames(ctx, alternatives)
		notice := s.generator.StockNotice(unavailable, names, alternatives)
		if reply != "" {
			reply += "\n\n"
		}
		reply += notice
	}

	return reply, nil
}

func (s *orderService) sendReply(request *dto.ProcessOrderRequest, body string) {
	if s.emailSender == nil || request.From == "" || body == "" {
		return
	}
	subject := request.Subject
	if subject == "" {
		subject = "Your order"
	}
	if err := s.emailSender.SendReply(request.From, "Re: "+subject, body); err != nil {
		s.sysLogger.Warn("order", "reply send failed", map[string]interface{}{
			"email_id": request.EmailId,
			"error":    err.Error(),
		})
	}
}

func (s *orderService) productNames(ctx context.Context, outcomes []*entity.OrderOutcome) (map[string]string, error) {
	ids := make([]string, 0, len(outcomes))
	seen := make(map[string]bool)
	for _, o := range outcomes {
		if !seen[o.ProductId] {
			seen[o.ProductId] = true
			ids = append(ids, o.ProductId)
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	products, err := uow.ProductRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.Id] = p.Name
	}
	return names, nil
}

// suggestAlternatives finds in-stock neighbours of the sold-out products by
// searching the index with each product's own vector.
func (s *orderService) suggestAlternatives(unavailable []*entity.OrderOutcome) []response.Alternative {
	ix := s.store.Current()

	var picks []response.Alternative
	picked := make(map[string]bool)
	for _, o := range unavailable {
		picked[o.ProductId] = true
	}

	for _, o := range unavailable {
		entry, ok := ix.EntryByProduct(o.ProductId)
		if !ok {
			continue
		}

		added := 0
		for _, match := range ix.Search(entry.Vector, alternativeCandidates) {
			id := match.Entry.ProductId
			if picked[id] {
				continue
			}
			if available, err := s.stockLedger.Peek(id); err != nil || available <= 0 {
				continue
			}
			picked[id] = true
			picks = append(picks, response.Alternative{
				ProductId: id,
				Snippet:   match.Entry.Snippet,
			})
			added++
			if added == maxAlternatives {
				break
			}
		}
	}

	return picks
}

func (s *orderService) hydrateAlternativeNames(ctx context.Context, picks []response.Alternative) {
	ids := make([]string, len(picks))
	for i, alt := range picks {
		ids[i] = alt.ProductId
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	products, err := uow.ProductRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return
	}

	byId := make(map[string]string, len(products))
	for _, p := range products {
		byId[p.Id] = p.Name
	}
	for i := range picks {
		if name, ok := byId[picks[i].ProductId]; ok {
			picks[i].Name = name
		}
	}
}
