package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"civicdocs/internal/auth"
	"civicdocs/internal/config"
	"civicdocs/internal/database"
	"civicdocs/internal/database/migration"
	handlers "civicdocs/internal/http/handler"
	"civicdocs/internal/http/middleware"
	"civicdocs/internal/otel"
	"civicdocs/internal/registry"
	"civicdocs/internal/repository/postgres"
	"civicdocs/internal/service"
	"civicdocs/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	shutdownTracing, err := otel.Init(context.Background(), time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(context.Background(), db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	store, err := storage.NewLocal(cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("failed to initialize document storage: %v", err)
	}
	if err := os.MkdirAll(cfg.Storage.TmpDir, 0o755); err != nil {
		log.Fatalf("failed to create upload temp dir: %v", err)
	}

	docRepo := postgres.NewDocumentPostgres(db)
	requests := registry.NewRequestPostgres(db)
	authSvc := auth.New(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	docSvc := service.NewDocumentService(store, docRepo, requests, cfg.Storage.MaxUploadBytes, cfg.Retention.DefaultExpiryDays)
	sweeper := service.NewRetentionService(docRepo, store, promRegistry)
	statsSvc := service.NewStatsService(docRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Leave headroom above the validated per-file limit for multipart framing.
		BodyLimit: int(cfg.Storage.MaxUploadBytes) + 1024*1024,
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMiddleware, err := middleware.NewPrometheusMiddleware(promRegistry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.RouteDeps{
		DB:           db,
		Documents:    docSvc,
		Retention:    sweeper,
		Stats:        statsSvc,
		Auth:         authSvc,
		UploadTmpDir: cfg.Storage.TmpDir,
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
