package main

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/HamzaSid020/MediVault/internal/blob"
	"github.com/HamzaSid020/MediVault/internal/config"
	"github.com/HamzaSid020/MediVault/internal/logger"
	"github.com/HamzaSid020/MediVault/internal/mailer"
	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/routes"
)

func main() {
	// Load environment variables; a missing .env is fine in production
	_ = godotenv.Load()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	log := logger.New(cfg.Environment)

	// Create a DatabaseConfig for models
	modelDbConfig := models.DatabaseConfig{
		DSN: cfg.Database.DSN,
	}

	// Initialize database connection
	db, err := models.InitDB(modelDbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	// Redis backs the pending-download selection store
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Document files live on disk
	blobs, err := blob.NewFSStore(cfg.DocumentsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing document store")
	}

	// Access-code emails go through Mailgun when configured
	var sender mailer.Sender
	if cfg.Mailer.Domain != "" && cfg.Mailer.APIKey != "" {
		sender = mailer.NewMailgun(cfg.Mailer.Domain, cfg.Mailer.APIKey, cfg.Mailer.From, log)
	} else {
		log.Warn().Msg("mailgun not configured, access-code emails will be dropped")
		sender = &mailer.Disabled{Log: log}
	}

	// Initialize Gin router
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes - passing dependencies to let routes.go create the handlers
	routes.SetupRoutes(router, db, rdb, blobs, sender, cfg, log)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Str("port", cfg.Port).Msg("server running")
	if err := router.Run(serverAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
