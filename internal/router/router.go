// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tcuscholar/scholarship-backend/internal/config"
	"github.com/tcuscholar/scholarship-backend/internal/handlers"
	"github.com/tcuscholar/scholarship-backend/internal/middleware"
	"github.com/tcuscholar/scholarship-backend/internal/services"
	"github.com/tcuscholar/scholarship-backend/internal/utils"
	"github.com/tcuscholar/scholarship-backend/internal/verification"
)

func Initialize(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	disbursementService := services.NewDisbursementService(db, cfg)

	authService := services.NewAuthService(db, cfg)
	studentService := services.NewStudentService(db, cfg)
	applicationService := services.NewApplicationService(db, cfg, storageService, notificationService,
		verification.NewTimeSeededSource(), log)
	adminService := services.NewAdminService(db, notificationService, disbursementService, storageService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, notificationService)
	studentHandler := handlers.NewStudentHandler(studentService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	adminHandler := handlers.NewAdminHandler(adminService, disbursementService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/change-password", middleware.AuthRequired(), authHandler.ChangePassword)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Student routes
		students := v1.Group("/students")
		students.Use(middleware.AuthRequired())
		{
			students.GET("/dashboard", studentHandler.GetDashboard)
			students.GET("/profile", studentHandler.GetProfile)
			students.PUT("/profile", studentHandler.UpdateProfile)
		}

		// Application routes
		applications := v1.Group("/applications")
		applications.Use(middleware.AuthRequired())
		{
			applications.POST("", middleware.SubmissionRateLimit(), applicationHandler.SubmitApplication)
			applications.GET("", applicationHandler.ListApplications)
			applications.GET("/:id", applicationHandler.GetApplication)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// Dashboard
			dashboard := admin.Group("/dashboard")
			{
				dashboard.GET("/stats", adminHandler.GetDashboardStats)
			}

			// Application management
			adminApplications := admin.Group("/applications")
			{
				adminApplications.GET("", adminHandler.GetApplications)
				adminApplications.GET("/:id", adminHandler.GetApplication)
				adminApplications.PUT("/:id/status", adminHandler.UpdateApplicationStatus)
				adminApplications.DELETE("/:id", adminHandler.DeleteApplication)
				adminApplications.GET("/:id/disbursement", adminHandler.GetDisbursement)
				adminApplications.POST("/:id/disbursement", adminHandler.ReleaseDisbursement)
			}

			// Student management
			adminStudents := admin.Group("/students")
			{
				adminStudents.GET("", adminHandler.GetStudents)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
