package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"commandlayer/internal/api"
	"commandlayer/internal/api/handlers"
	"commandlayer/internal/llm"
	"commandlayer/internal/rag"
	"commandlayer/internal/repository"
	"commandlayer/internal/service"
	"commandlayer/pkg/config"
	"commandlayer/pkg/logger"
	"commandlayer/pkg/postgres"
	"commandlayer/pkg/ratelimit"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting CommandLayer service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	assignmentRepo := repository.NewAssignmentRepository(db, appLogger)
	commandLogRepo := repository.NewCommandLogRepository(db, appLogger)
	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
	apiKeyRepo := repository.NewAPIKeyRepository(db, appLogger)
	assetRepo := repository.NewAssetRepository(db, appLogger)
	taskRepo := repository.NewTaskRepository(db, appLogger)

	// Initialize providers and retrieval
	llmClient := llm.NewClient(&cfg.OpenAI, appLogger)
	embeddingsClient := llm.NewEmbeddingsClient(&cfg.OpenAI, appLogger)
	llmResolver := llm.NewIntentResolver(llmClient, appLogger)
	retriever := rag.NewRetriever(&cfg.RAG, embeddingsClient, knowledgeRepo, appLogger)

	// Initialize the command pipeline
	resolver, err := service.NewIntentResolver(service.ResolverMode(cfg.Resolver.Mode), llmResolver, retriever, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize intent resolver", zap.Error(err))
	}
	validator := service.NewCommandValidator()
	executor := service.NewCommandExecutor(assignmentRepo, appLogger)
	commandService := service.NewCommandService(validator, resolver, executor, commandLogRepo, appLogger)

	// Initialize handlers
	commandHandler := handlers.NewCommandHandler(commandService, appLogger)
	observabilityHandler := handlers.NewObservabilityHandler(commandLogRepo, assetRepo, taskRepo, appLogger)

	// Rate limiting, one limiter instance per serving process
	limiter := ratelimit.NewFixedWindow(cfg.RateLimit.Limit, cfg.RateLimit.Window)

	// Setup router
	app := api.SetupRouter(&cfg.Auth, commandHandler, observabilityHandler, apiKeyRepo, limiter, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting",
			zap.String("address", addr),
			zap.String("resolver_mode", cfg.Resolver.Mode),
			zap.String("rag_mode", cfg.RAG.Mode),
		)
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
