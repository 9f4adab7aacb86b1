package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"paywise/internal/config"
	"paywise/internal/database"
	"paywise/internal/handlers"
	"paywise/internal/logger"
	"paywise/internal/middleware"
	"paywise/internal/services"
	"paywise/internal/validator"

	_ "paywise/internal/docs" // Import swagger docs
)

// @title           Paywise API
// @version         1.0
// @description     Paywise is a personal budgeting application that projects recurring incomes and expenses into monthly views and tracks per-month totals.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	summaryService := services.NewSummaryService(db)
	occurrenceStore := services.NewOccurrenceStore(db, summaryService)
	definitionService := services.NewDefinitionService(db, occurrenceStore, summaryService)
	budgetService := services.NewBudgetService(db, occurrenceStore, summaryService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, appConfig.ActiveMonthWindow)
	definitionHandler := handlers.NewDefinitionHandler(definitionService)
	occurrenceHandler := handlers.NewOccurrenceHandler(occurrenceStore)
	summaryHandler := handlers.NewSummaryHandler(summaryService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PATCH("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.POST("/:id/months", budgetHandler.EnsureMonths)
	budgets.GET("/:id/months/:month", budgetHandler.GetMonthEvents)
	budgets.POST("/:id/definitions", definitionHandler.CreateDefinition)
	budgets.GET("/:id/definitions", definitionHandler.GetDefinitions)
	budgets.POST("/:id/occurrences", occurrenceHandler.CreateOneTime)
	budgets.GET("/:id/summaries", summaryHandler.GetSummaries)
	budgets.GET("/:id/summaries/:month", summaryHandler.GetSummary)
	budgets.PUT("/:id/summaries/:month", summaryHandler.RecomputeSummary)

	// Definition routes
	definitions := protected.Group("/definitions")
	definitions.GET("/:id", definitionHandler.GetDefinition)
	definitions.DELETE("/:id", definitionHandler.DeleteDefinition)

	// Occurrence routes
	occurrences := protected.Group("/occurrences")
	occurrences.GET("/:id", occurrenceHandler.GetOccurrence)
	occurrences.PATCH("/:id", occurrenceHandler.UpdateOccurrence)
	occurrences.PUT("/:id/paid", occurrenceHandler.SetPaid)
	occurrences.PATCH("/:id/series", occurrenceHandler.UpdateSeries)
	occurrences.DELETE("/:id", occurrenceHandler.DeleteOccurrence)

	log.Infof("Starting Paywise backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
