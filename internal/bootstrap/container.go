package bootstrap

import (
	"context"
	"log"
	"time"

	"chatbot-router-be/internal/config"
	"chatbot-router-be/internal/controller"
	"chatbot-router-be/internal/handler"
	"chatbot-router-be/internal/pkg/logger"
	"chatbot-router-be/internal/service"
	"chatbot-router-be/pkg/embedding"
	"chatbot-router-be/pkg/llm/factory"
	pktNats "chatbot-router-be/pkg/nats"
	"chatbot-router-be/pkg/search"
	"chatbot-router-be/pkg/vectorstore"
	"chatbot-router-be/pkg/workflow"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// WebSocket streaming
	ChatStreamHandler *handler.ChatStreamHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	workflowLogger := logger.NewIsolatedLogger("logs/workflow.log")

	store := vectorstore.NewPgStore(db, cfg.Ai.EmbeddingDims)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s, %d dims)", cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDims)
	} else {
		embeddingProvider = embedding.NewHashProvider(cfg.Ai.EmbeddingDims)
		log.Printf("[INFO] Using Embedding Provider: HASH (%d dims)", cfg.Ai.EmbeddingDims)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// In-process analysis cache
	analysisCache := gocache.New(30*time.Minute, 10*time.Minute)

	// Web search
	var searcher search.Provider
	if cfg.Search.Provider == "tavily" && cfg.Keys.Tavily != "" {
		searcher = search.NewTavilyProvider(cfg.Keys.Tavily, cfg.Search.MaxResults)
		log.Printf("[INFO] Using Search Provider: TAVILY")
	} else {
		searcher = search.NewDuckDuckGoProvider(cfg.Search.MaxResults)
		log.Printf("[INFO] Using Search Provider: DUCKDUCKGO")
	}
	searcher = search.NewCachedProvider(searcher, rdb, cfg.Search.CacheTTL)

	// 4. Routing Workflow
	nodes := workflow.NewNodes(
		llmProvider,
		embeddingProvider,
		store,
		searcher,
		workflowLogger,
		cfg.Workflow.MaxRetries,
	)
	wf := workflow.New(nodes, cfg.Workflow.StepTimeout, cfg.Workflow.RunTimeout)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Keys.IngestTopic, store, analysisCache)

	ragService := service.NewRagService(
		store,
		embeddingProvider,
		llmProvider,
		publisherService,
		natsPub,
		analysisCache,
		cfg.Ai.CollectionName,
		sysLogger,
	)
	chatService := service.NewChatService(llmProvider, ragService, wf, natsPub, sysLogger)

	// 6. Controllers & Handlers
	chatController := controller.NewChatController(chatService, ragService)
	documentController := controller.NewDocumentController(ragService, cfg.App.UploadDir, cfg.Keys.AdminJWT)
	chatStreamHandler := handler.NewChatStreamHandler(chatService, workflowLogger)

	return &Container{
		ChatController:     chatController,
		DocumentController: documentController,
		ChatStreamHandler:  chatStreamHandler,
		ConsumerService:    consumerService,
	}
}
