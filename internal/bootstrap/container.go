package bootstrap

import (
	"context"
	"log"

	"ai-mailroom-be/internal/config"
	"ai-mailroom-be/internal/controller"
	"ai-mailroom-be/internal/ledger"
	"ai-mailroom-be/internal/pkg/logger"
	"ai-mailroom-be/internal/pkg/mailer"
	"ai-mailroom-be/internal/repository/memory"
	"ai-mailroom-be/internal/repository/unitofwork"
	"ai-mailroom-be/internal/service"
	"ai-mailroom-be/pkg/catalog"
	"ai-mailroom-be/pkg/embedding"
	"ai-mailroom-be/pkg/llm/factory"
	"ai-mailroom-be/pkg/rag/response"
	"ai-mailroom-be/pkg/rag/retrieval"

	pktNats "ai-mailroom-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ProductController controller.IProductController
	EmailController   controller.IEmailController
	OrderController   controller.IOrderController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	CatalogService  service.ICatalogService

	// Infrastructure handles main.go must close on shutdown
	NatsPublisher *pktNats.Publisher
	PubSub        *gochannel.GoChannel
	Logger        logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Catalog core
	store := catalog.NewStore()
	builder := catalog.NewBuilder(embeddingProvider)
	stockLedger := ledger.New()

	planner := retrieval.NewPlanner(embeddingProvider, store, retrieval.Config{
		InitialK:      cfg.Retrieval.InitialK,
		MinSimilarity: cfg.Retrieval.MinSimilarity,
	})

	generator := response.NewGenerator(llmProvider, response.CompanyInfo{
		Name:         cfg.Company.Name,
		ContactEmail: cfg.Company.ContactEmail,
		Phone:        cfg.Company.Phone,
		PolicyURL:    cfg.Company.PolicyURL,
	})

	classificationCache := memory.NewClassificationCache()

	// 5. NATS (optional; outcome events are skipped when unset)
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	var outcomePublisher service.OutcomePublisher
	if natsPub != nil {
		outcomePublisher = natsPub
	}

	// 6. Services
	catalogService := service.NewCatalogService(
		uowFactory, builder, store, stockLedger, planner,
		pubSub, cfg.App.EmbedTopicName, outcomePublisher, sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub, cfg.App.EmbedTopicName, uowFactory, embeddingProvider, store, sysLogger,
	)
	classifierService := service.NewClassifierService(llmProvider, classificationCache, uowFactory, sysLogger)
	inquiryService := service.NewInquiryService(
		planner, generator, uowFactory, emailService, sysLogger,
		cfg.Retrieval.DefaultBudgetTokens,
	)

	orderService := service.NewOrderService(
		uowFactory, stockLedger, store, generator, outcomePublisher, emailService, sysLogger,
	)
	ledgerService := service.NewLedgerService(stockLedger)

	// 7. Startup state: stock levels and index come back from the database.
	startupCtx := context.Background()
	if err := catalogService.RestoreLedger(startupCtx); err != nil {
		log.Printf("[WARN] Failed to restore stock ledger: %v", err)
	}
	if status, err := catalogService.RestoreIndex(startupCtx); err != nil {
		log.Printf("[WARN] Failed to restore catalog index: %v", err)
	} else {
		log.Printf("[INFO] Catalog index restored: %d entries", status.Entries)
	}

	return &Container{
		ProductController: controller.NewProductController(catalogService, ledgerService),
		EmailController:   controller.NewEmailController(classifierService, inquiryService),
		OrderController:   controller.NewOrderController(orderService),

		ConsumerService: consumerService,
		CatalogService:  catalogService,

		NatsPublisher: natsPub,
		PubSub:        pubSub,
		Logger:        sysLogger,
	}
}
