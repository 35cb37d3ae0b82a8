package routes

import (
	"time"

	"github.com/HamzaSid020/MediVault/internal/blob"
	"github.com/HamzaSid020/MediVault/internal/config"
	"github.com/HamzaSid020/MediVault/internal/handlers"
	"github.com/HamzaSid020/MediVault/internal/mailer"
	"github.com/HamzaSid020/MediVault/internal/middleware"
	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"
	"github.com/HamzaSid020/MediVault/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, rdb *redis.Client, blobs blob.Store, sender mailer.Sender, cfg *config.Config, log zerolog.Logger) {
	// Initialize stores and services
	codes := services.NewAccessCodeService(store.NewAccessCodeStore(db))
	notifications := services.NewNotificationService(store.NewNotificationStore(db), log)
	documents := services.NewDocumentService(store.NewDocumentStore(db), blobs, log)
	selectionTTL := time.Duration(cfg.SelectionTTLMinutes) * time.Minute
	selections := services.NewSelectionService(store.NewSelectionStore(rdb, selectionTTL), codes)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	patientHandler := handlers.NewPatientHandler(db, codes, documents, notifications, blobs)
	documentHandler := handlers.NewDocumentHandler(db, documents, selections, notifications)
	notificationHandler := handlers.NewNotificationHandler(notifications)
	accessCodeHandler := handlers.NewAccessCodeHandler(db, codes, sender)
	hospitalHandler := handlers.NewHospitalHandler(db, notifications)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
		public.GET("/hospitals", hospitalHandler.ListPublic)
		public.POST("/contact", hospitalHandler.Contact)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Patient records and affiliation (hospital side), own profile (patient side)
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleHospital), patientHandler.RegisterPatient)
			patientRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleHospital), patientHandler.ListForHospital)
			patientRoutes.POST("/link", middleware.RoleAuthMiddleware(models.RoleHospital), patientHandler.LinkPatient)

			patientRoutes.GET("/me", middleware.RoleAuthMiddleware(models.RolePatient), patientHandler.GetMe)
			patientRoutes.PUT("/me", middleware.RoleAuthMiddleware(models.RolePatient), patientHandler.UpdateMe)
			patientRoutes.POST("/me/picture", middleware.RoleAuthMiddleware(models.RolePatient), patientHandler.UploadPicture)
		}

		// Reports, bills and prescriptions share one surface keyed by :kind
		documentRoutes := private.Group("/documents/:kind")
		{
			documentRoutes.GET("", documentHandler.List) // role decides which side's view
			documentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleHospital), documentHandler.Upload)
			documentRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleHospital), documentHandler.Delete)

			documentRoutes.POST("/select", middleware.RoleAuthMiddleware(models.RolePatient), documentHandler.Select)
			documentRoutes.POST("/confirm", middleware.RoleAuthMiddleware(models.RolePatient), documentHandler.Confirm)
			documentRoutes.DELETE("/select", middleware.RoleAuthMiddleware(models.RolePatient), documentHandler.ClearSelection)
			documentRoutes.GET("/:id/download", middleware.RoleAuthMiddleware(models.RolePatient), documentHandler.Download)
		}

		// Access codes
		accessCodeRoutes := private.Group("/access-codes")
		{
			accessCodeRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleHospital), accessCodeHandler.ListForHospital)
			accessCodeRoutes.POST("/email", middleware.RoleAuthMiddleware(models.RolePatient), accessCodeHandler.EmailCode)
		}

		// Notifications (patient and hospital logs, resolved from the token)
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.List)
			notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkRead)
		}

		// Hospital profile and admin provisioning
		hospitalRoutes := private.Group("/hospitals")
		{
			hospitalRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), hospitalHandler.Create)
			hospitalRoutes.GET("/me", middleware.RoleAuthMiddleware(models.RoleHospital), hospitalHandler.GetMe)
			hospitalRoutes.PUT("/me", middleware.RoleAuthMiddleware(models.RoleHospital), hospitalHandler.UpdateMe)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
