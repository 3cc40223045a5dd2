package bootstrap

import (
	"log"
	"os"
	"path/filepath"

	"ai-knowledge-be/internal/config"
	"ai-knowledge-be/internal/controller"
	"ai-knowledge-be/internal/pkg/logger"
	"ai-knowledge-be/internal/repository/unitofwork"
	"ai-knowledge-be/internal/service"
	"ai-knowledge-be/pkg/embedding"
	"ai-knowledge-be/pkg/llm/factory"
	pkgNats "ai-knowledge-be/pkg/nats"
	"ai-knowledge-be/pkg/rag/answer"
	"ai-knowledge-be/pkg/rag/classify"
	"ai-knowledge-be/pkg/rag/history"
	"ai-knowledge-be/pkg/rag/judge"
	"ai-knowledge-be/pkg/rag/metrics"
	"ai-knowledge-be/pkg/rag/rewrite"
	"ai-knowledge-be/pkg/rag/search"
	"ai-knowledge-be/pkg/rag/summary"
	"ai-knowledge-be/pkg/rag/workflow"
	"ai-knowledge-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	FeedbackConsumerService service.IFeedbackConsumerService

	// Core Facades
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := initPipelineLogger()

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
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 5. Pipeline Components
	naming := vectorstore.Naming{Prefix: cfg.Pipeline.CollectionPrefix}
	index := vectorstore.NewPgVectorIndex(uowFactory)

	metricsService := metrics.NewService(metrics.Config{
		Default:     cfg.Pipeline.ThresholdDefault,
		Min:         cfg.Pipeline.ThresholdMin,
		Max:         cfg.Pipeline.ThresholdMax,
		HistorySize: 50,
		MinSamples:  10,
	}, pipelineLogger)

	classifier := classify.NewClassifier(llmProvider, pipelineLogger)
	retriever := search.NewRetriever(index, embeddingProvider, llmProvider, naming, cfg.Pipeline.TopKPerColl, pipelineLogger)
	generator := answer.NewGenerator(llmProvider, pipelineLogger)
	judgeNode := judge.NewJudge(llmProvider, metricsService, pipelineLogger)
	rewriter := rewrite.NewRewriter(llmProvider, pipelineLogger)
	summarizer := summary.NewSummarizer(llmProvider, uowFactory, pipelineLogger)

	orchestrator := workflow.NewOrchestrator(
		classifier,
		retriever,
		generator,
		judgeNode,
		rewriter,
		summarizer,
		workflow.Config{RewriteLimit: cfg.Pipeline.RewriteLimit},
		pipelineLogger,
	)

	historyLoader := history.NewLoader(uowFactory)

	// 6. Services
	feedbackPub := service.NewFeedbackPublisherService(cfg.App.FeedbackTopic, pubSub)
	feedbackConsumer := service.NewFeedbackConsumerService(
		pubSub,
		cfg.App.FeedbackTopic,
		metricsService,
		pipelineLogger,
	)

	assistantService := service.NewAssistantService(
		uowFactory,
		orchestrator,
		historyLoader,
		cfg.Pipeline.HistoryWindow,
		feedbackPub,
		natsPub,
		pipelineLogger,
	)

	sysLogger.Info("BOOTSTRAP", "Container initialized", map[string]interface{}{
		"llm_provider":       cfg.Ai.LLMProvider,
		"embedding_provider": cfg.Ai.EmbeddingProvider,
		"collection_prefix":  cfg.Pipeline.CollectionPrefix,
		"rewrite_limit":      cfg.Pipeline.RewriteLimit,
	})

	// 7. Controllers
	return &Container{
		AssistantController:     controller.NewAssistantController(assistantService),
		FeedbackConsumerService: feedbackConsumer,
		Logger:                  sysLogger,
	}
}

func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
