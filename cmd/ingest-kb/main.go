package main

import (
	"context"
	"log"

	"commandlayer/internal/llm"
	"commandlayer/internal/rag"
	"commandlayer/internal/repository"
	"commandlayer/pkg/config"
	"commandlayer/pkg/logger"
	"commandlayer/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// One-shot job: a standalone logger, no global state.
	appLogger, err := logger.New(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
	embeddingsClient := llm.NewEmbeddingsClient(&cfg.OpenAI, appLogger)
	ingestor := rag.NewIngestor(&cfg.RAG, knowledgeRepo, embeddingsClient, appLogger)

	appLogger.Info("Starting knowledge base ingestion",
		zap.String("path", cfg.RAG.KnowledgeBasePath),
	)

	summary, err := ingestor.Ingest(ctx)
	if err != nil {
		appLogger.Fatal("Knowledge base ingestion failed", zap.Error(err))
	}

	appLogger.Info("Knowledge base ingestion complete",
		zap.Int("total", summary.Total),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("deleted", summary.Deleted),
		zap.Int("skipped", summary.Skipped),
	)
}
