package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"supplier-sync-service/internal/config"
	"supplier-sync-service/internal/database"
	"supplier-sync-service/internal/handlers"
	"supplier-sync-service/internal/middleware"
	"supplier-sync-service/internal/models"
	"supplier-sync-service/internal/repository"
	"supplier-sync-service/internal/services"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "development" {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductColor{},
		&models.ProductSize{},
		&models.SkuMapEntry{},
		&models.MediaGroup{},
		&models.ProductKeyword{},
		&models.InventoryRecord{},
		&models.SupplierConnection{},
		&models.SupplierSyncJob{},
		&models.SupplierSyncLog{},
	); err != nil {
		log.Printf("Warning: Auto-migration failed: %v", err)
	}
	logger.Info("Database models migrated")

	// Initialize repositories
	connectionRepo := repository.NewConnectionRepository(db)
	syncRepo := repository.NewSyncRepository(db)
	productRepo := repository.NewProductRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	// Initialize services
	syncService := services.NewSyncService(syncRepo, connectionRepo, productRepo, inventoryRepo, cfg, logrus.NewEntry(logger))
	importService := services.NewImportService(syncRepo, connectionRepo, productRepo, cfg, logrus.NewEntry(logger))
	connectionService := services.NewConnectionService(connectionRepo, syncService, logrus.NewEntry(logger))
	productService := services.NewProductService(connectionRepo, productRepo, inventoryRepo, syncService, logrus.NewEntry(logger))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	productHandler := handlers.NewProductHandler(productService, productRepo)
	syncHandler := handlers.NewSyncHandler(syncService)
	importHandler := handlers.NewImportHandler(importService)
	connectionHandler := handlers.NewConnectionHandler(connectionService)

	// Setup router
	router := setupRouter(cfg, logger, healthHandler, productHandler, syncHandler, importHandler, connectionHandler)

	// Start server
	logger.WithFields(logrus.Fields{
		"port": cfg.Port,
		"env":  cfg.Environment,
	}).Info("Supplier Sync Service starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures the HTTP router
func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	healthHandler *handlers.HealthHandler,
	productHandler *handlers.ProductHandler,
	syncHandler *handlers.SyncHandler,
	importHandler *handlers.ImportHandler,
	connectionHandler *handlers.ConnectionHandler,
) *gin.Engine {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:styleId", productHandler.Get)
			products.GET("/:styleId/inventory/matrix", productHandler.Matrix)
		}

		// Sync Jobs
		syncJobs := v1.Group("/sync/jobs")
		{
			syncJobs.GET("", syncHandler.ListJobs)
			syncJobs.POST("", syncHandler.CreateJob)
			syncJobs.GET("/:id", syncHandler.GetJob)
			syncJobs.POST("/:id/cancel", syncHandler.CancelJob)
			syncJobs.GET("/:id/logs", syncHandler.GetJobLogs)
		}

		// Bulk Imports
		imports := v1.Group("/imports")
		{
			imports.POST("/catalog", importHandler.Catalog)
			imports.POST("/enrichment", importHandler.Enrichment)
		}

		// Supplier Connections
		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("", connectionHandler.List)
			suppliers.POST("", connectionHandler.Create)
			suppliers.GET("/:id", connectionHandler.Get)
			suppliers.PATCH("/:id", connectionHandler.Update)
			suppliers.DELETE("/:id", connectionHandler.Delete)
			suppliers.POST("/:id/test", connectionHandler.Test)
		}
	}

	return router
}
