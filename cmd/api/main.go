package main

import (
	"fmt"
	"log"

	"github.com/contaflux/contaflux-api/internal/config"
	"github.com/contaflux/contaflux-api/internal/database"
	"github.com/contaflux/contaflux-api/internal/handlers"
	"github.com/contaflux/contaflux-api/internal/middleware"
	"github.com/contaflux/contaflux-api/internal/repository"
	"github.com/contaflux/contaflux-api/internal/services"
	"github.com/contaflux/contaflux-api/internal/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	loc := cfg.Location()

	// Connect to database
	pool, err := database.Connect(cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBConnectionTimeout)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	log.Println("✓ Connected to database successfully")

	// Record store over the pool
	store := repository.NewStore(pool)

	// Reload coordinator for the reporting views
	reloader := services.NewReloader(store, services.DefaultStatementLabels())
	log.Println("✓ Reload coordinator initialized successfully")

	// Statement archive is optional; without a bucket, exports are
	// download-only.
	var archive *services.ArchiveService
	if cfg.S3Bucket != "" {
		archive, err = services.NewArchiveService(cfg.S3Bucket, cfg.S3Region, cfg.AWSEndpoint)
		if err != nil {
			log.Fatalf("Failed to initialize statement archive: %v", err)
		}
		log.Println("✓ Statement archive initialized successfully")
	} else {
		log.Println("Statement archive disabled (S3_BUCKET not set)")
	}

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(reloader, loc)
	statementHandler := handlers.NewStatementHandler(reloader, archive, loc)
	budgetHandler := handlers.NewBudgetHandler(store, reloader, loc)
	categoriesHandler := handlers.NewCategoriesHandler(store)
	costCentersHandler := handlers.NewCostCentersHandler(store)
	recordsHandler := handlers.NewRecordsHandler(store, loc)

	app := fiber.New(fiber.Config{
		AppName:      "contaflux API v1.0",
		ErrorHandler: utils.ErrorHandler,
	})

	// Apply global middleware
	app.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check endpoint (public)
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "contaflux-api",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Protected routes (require authentication)
	protected := v1.Group("", middleware.ClerkAuth(cfg.ClerkSecretKey))

	// Reporting
	protected.Get("/dashboard", dashboardHandler.GetDashboard)
	protected.Get("/reports/statement", statementHandler.GetStatement)
	protected.Delete("/reports/statement/archive", statementHandler.DeleteArchived)

	// Budget planning
	protected.Get("/budget", budgetHandler.GetRollup)
	protected.Put("/budget", budgetHandler.Commit)
	protected.Post("/budget/draft", budgetHandler.DraftFromPrevious)
	protected.Post("/budget/distribute", budgetHandler.Distribute)

	// Chart of accounts
	protected.Get("/categories", categoriesHandler.List)
	protected.Post("/categories", categoriesHandler.Create)
	protected.Put("/categories/:id", categoriesHandler.Update)
	protected.Delete("/categories/:id", categoriesHandler.Deactivate)

	// Cost centers
	protected.Get("/cost-centers", costCentersHandler.List)
	protected.Post("/cost-centers", costCentersHandler.Create)
	protected.Put("/cost-centers/:id", costCentersHandler.Update)

	// Ledger
	protected.Get("/records", recordsHandler.List)
	protected.Get("/records/:id", recordsHandler.Get)
	protected.Post("/records", recordsHandler.Create)
	protected.Put("/records/:id/pay", recordsHandler.Pay)
	protected.Delete("/records/:id", recordsHandler.Delete)

	log.Println("✓ All routes configured successfully")
	log.Printf("🚀 contaflux API is running on :%d", cfg.Port)
	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.Port)))
}
