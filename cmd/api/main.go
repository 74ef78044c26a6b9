package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"property-catalog/internal/cleanup"
	"property-catalog/internal/config"
	"property-catalog/internal/database"
	"property-catalog/internal/handlers"
	"property-catalog/internal/importer"
	"property-catalog/internal/media"
	"property-catalog/internal/scheduler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	configPath := getEnv("CONFIG_PATH", "config.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Env overrides for containerized deployments
	appConfig.Database.Type = getEnvOrConfig(appConfig.Database.Type, "DB_TYPE", "sqlite")
	appConfig.Media.Root = getEnvOrConfig(appConfig.Media.Root, "MEDIA_ROOT", "media")

	db, err := database.Open(appConfig.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	if err := os.MkdirAll(appConfig.Media.Root, 0o755); err != nil {
		log.Fatalf("Failed to create media root: %v", err)
	}
	store := media.NewStore(appConfig.Media.Root)

	cleanupService := cleanup.NewService(db, store)
	cleanupConfig := cleanup.Config{
		RetentionHours:   appConfig.Cleanup.RetentionHours,
		MaxDeletionCount: appConfig.Cleanup.MaxDeletionCount,
		DryRun:           appConfig.Cleanup.DryRun,
	}

	// Start the daily media cleanup scheduler
	appScheduler := scheduler.NewScheduler(cleanupService, appConfig)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	imp := importer.New(db, store)

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	r.LoadHTMLGlob("web/templates/*.html")
	r.Static("/media", appConfig.Media.Root)

	apiHandler := handlers.NewHandler(db, appConfig.Server.PublicBaseURL)
	adminHandler := handlers.NewAdminHandler(db, imp, cleanupService, cleanupConfig)

	// Routes
	r.GET("/health", healthCheck)
	r.GET("/", apiHandler.HomePage)
	r.GET("/properties/:id", apiHandler.PropertyDetailPage)

	r.GET("/api/properties", apiHandler.ListProperties)
	r.GET("/api/properties/:id", apiHandler.GetProperty)
	r.GET("/api/locations", apiHandler.ListLocations)
	r.GET("/api/locations/autocomplete", apiHandler.AutocompleteLocations)

	// Admin API routes (requires authentication in production)
	admin := r.Group("/api/admin")
	{
		admin.POST("/import", adminHandler.TriggerImport)
		admin.GET("/import/logs", adminHandler.GetImportLogs)
		admin.POST("/cleanup/run", adminHandler.RunCleanup)
		admin.DELETE("/locations/:id", adminHandler.DeleteLocation)
	}
	log.Println("Admin API routes registered at /api/admin/*")

	port := getEnvOrConfig(appConfig.Server.Port, "PORT", "8084")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

// getEnv gets environment variable with a fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvOrConfig prefers the config value, then the environment, then the default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}
