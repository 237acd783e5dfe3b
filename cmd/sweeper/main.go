package main

import (
	"context"
	"log"

	_ "github.com/joho/godotenv/autoload"

	"civicdocs/internal/config"
	"civicdocs/internal/database"
	"civicdocs/internal/repository/postgres"
	"civicdocs/internal/service"
	"civicdocs/internal/storage"
)

// One-shot retention sweep for cron use: archives every document past its
// expiry date and removes its stored file.
func main() {
	cfg := config.Load()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	store, err := storage.NewLocal(cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("failed to initialize document storage: %v", err)
	}

	docRepo := postgres.NewDocumentPostgres(db)
	sweeper := service.NewRetentionService(docRepo, store, nil)

	processed, err := sweeper.Sweep(context.Background())
	if err != nil {
		log.Fatalf("retention sweep failed: %v", err)
	}

	log.Printf("retention sweep completed: archived=%d", processed)
}
