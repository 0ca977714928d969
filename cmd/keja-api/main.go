package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/kejahunt/keja-api/internal/config"
	"github.com/kejahunt/keja-api/internal/db"
	"github.com/kejahunt/keja-api/internal/logger"
	"github.com/kejahunt/keja-api/internal/middleware"
	"github.com/kejahunt/keja-api/internal/services/ai"
	"github.com/kejahunt/keja-api/internal/services/auth"
	"github.com/kejahunt/keja-api/internal/services/images"
	"github.com/kejahunt/keja-api/internal/services/inquiry"
	"github.com/kejahunt/keja-api/internal/services/listing"
	"github.com/kejahunt/keja-api/internal/services/moderation"
	"github.com/kejahunt/keja-api/internal/services/saved"
	"github.com/kejahunt/keja-api/internal/storage"
)

func main() {
	cfg := config.LoadConfig()
	logger.Setup(cfg.AppEnv)

	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("initializing database: %v", err)
	}
	defer db.CloseDB()

	objectStore, err := storage.NewCloudinaryStore(cfg.CloudinaryConfig)
	if err != nil {
		log.Fatalf("initializing object store: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Keja API",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	aiClient := ai.NewClient(cfg.AIConfig)

	authService := auth.NewService(cfg)
	listingService := listing.NewService(cfg)
	imageService := images.NewService(cfg, images.NewIngestor(objectStore, images.NewPGImageStore()))
	savedService := saved.NewService(cfg)
	inquiryService := inquiry.NewService(cfg)
	aiService := ai.NewService(aiClient)

	authMiddleware := middleware.AuthMiddleware(authService.GetJWTService())

	authService.SetupRoutes(app, authMiddleware)
	listingService.SetupRoutes(app, authMiddleware)
	imageService.SetupRoutes(app, authMiddleware)
	savedService.SetupRoutes(app, authMiddleware)
	inquiryService.SetupRoutes(app, authMiddleware)
	aiService.SetupRoutes(app, authMiddleware)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go moderation.NewWorker(cfg, aiClient, moderation.NewPGScanStore()).Run(workerCtx)

	slog.Info("Keja API listening", "port", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler renders unhandled errors as JSON.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
