package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"commandlayer/internal/models"
	"commandlayer/internal/repository"
	"commandlayer/pkg/apikey"
	"commandlayer/pkg/config"
	"commandlayer/pkg/logger"
	"commandlayer/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	name := flag.String("name", "", "Human-readable name for the key")
	role := flag.String("role", "", "Role: admin, runner, or readonly")
	flag.Parse()

	if strings.TrimSpace(*name) == "" {
		fmt.Fprintln(os.Stderr, "-name is required")
		os.Exit(1)
	}
	if !models.ValidAPIKeyRole(strings.TrimSpace(*role)) {
		fmt.Fprintf(os.Stderr, "Invalid role %q. Expected one of: admin, readonly, runner.\n", *role)
		os.Exit(1)
	}

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

	plainKey, err := apikey.Generate()
	if err != nil {
		appLogger.Fatal("Failed to generate API key", zap.Error(err))
	}

	keyRepo := repository.NewAPIKeyRepository(db, appLogger)
	key := &models.APIKey{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(*name),
		KeyHash:   apikey.Hash(plainKey),
		Role:      models.APIKeyRole(strings.TrimSpace(*role)),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := keyRepo.Insert(ctx, key); err != nil {
		appLogger.Fatal("Failed to store API key", zap.Error(err))
	}

	// The plain key is printed once and never stored.
	fmt.Println(plainKey)
}
