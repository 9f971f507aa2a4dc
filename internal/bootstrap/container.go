package bootstrap

import (
	"log"
	"os"

	"doc-assistant-be/internal/config"
	"doc-assistant-be/internal/controller"
	"doc-assistant-be/internal/pkg/logger"
	"doc-assistant-be/internal/repository/unitofwork"
	"doc-assistant-be/internal/service"
	"doc-assistant-be/pkg/embedding"
	"doc-assistant-be/pkg/llm/factory"
	"doc-assistant-be/pkg/rag/contextbuilder"
	"doc-assistant-be/pkg/rag/retrieve"

	pktNats "doc-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// reindexTopic is the in-process watermill topic carrying reindex requests.
const reindexTopic = "CORPUS_REINDEX"

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	CorpusController controller.ICorpusController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Exposed for the ingest CLI, which drives the pipeline directly.
	IngestionService service.IIngestionService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Services
	embeddingProvider := NewEmbeddingProvider(cfg)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// NATS (optional: ingestion events only)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	batcher := embedding.NewBatcher(embeddingProvider, embedding.BatcherConfig{
		BatchSize: cfg.Corpus.EmbedBatchSize,
		Delay:     cfg.Corpus.EmbedBatchDelay,
	})

	retriever := retrieve.NewRetriever(
		embeddingProvider,
		log.New(os.Stdout, "[retrieve] ", log.LstdFlags),
	)
	assembler := contextbuilder.NewAssembler(cfg.Corpus.DocsBaseURL)

	ingestionService := service.NewIngestionService(
		uowFactory,
		batcher,
		natsPub,
		sysLogger,
		cfg.Corpus,
	)
	chatService := service.NewChatService(
		uowFactory,
		retriever,
		assembler,
		llmProvider,
		cfg.Corpus,
	)

	publisherService := service.NewPublisherService(reindexTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		reindexTopic,
		ingestionService,
	)

	// 4. Controllers
	return &Container{
		ChatController:   controller.NewChatController(chatService),
		CorpusController: controller.NewCorpusController(publisherService, ingestionService),

		ConsumerService:  consumerService,
		IngestionService: ingestionService,
	}
}

// NewEmbeddingProvider selects the embedding backend from config. The
// fixture provider is deterministic and offline, meant for local runs and
// integration tests.
func NewEmbeddingProvider(cfg *config.Config) embedding.EmbeddingProvider {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "fixture":
		log.Printf("[INFO] Using Embedding Provider: FIXTURE (dim=%d)", cfg.Ai.EmbeddingDim)
		return embedding.NewFixtureProvider(cfg.Ai.EmbeddingDim)
	default:
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
		return embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	}
}
