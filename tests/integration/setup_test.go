package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"paywise/internal/handlers"
	"paywise/internal/logger"
	"paywise/internal/middleware"
	"paywise/internal/models"
	"paywise/internal/services"
	"paywise/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Budget{},
		&models.Definition{},
		&models.Occurrence{},
		&models.Tombstone{},
		&models.MonthSummary{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	summaryService := services.NewSummaryService(db)
	occurrenceStore := services.NewOccurrenceStore(db, summaryService)
	definitionService := services.NewDefinitionService(db, occurrenceStore, summaryService)
	budgetService := services.NewBudgetService(db, occurrenceStore, summaryService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, 3)
	definitionHandler := handlers.NewDefinitionHandler(definitionService)
	occurrenceHandler := handlers.NewOccurrenceHandler(occurrenceStore)
	summaryHandler := handlers.NewSummaryHandler(summaryService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

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

	definitions := protected.Group("/definitions")
	definitions.GET("/:id", definitionHandler.GetDefinition)
	definitions.DELETE("/:id", definitionHandler.DeleteDefinition)

	occurrences := protected.Group("/occurrences")
	occurrences.GET("/:id", occurrenceHandler.GetOccurrence)
	occurrences.PATCH("/:id", occurrenceHandler.UpdateOccurrence)
	occurrences.PUT("/:id/paid", occurrenceHandler.SetPaid)
	occurrences.PATCH("/:id/series", occurrenceHandler.UpdateSeries)
	occurrences.DELETE("/:id", occurrenceHandler.DeleteOccurrence)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// createBudget creates a budget with the given payload and returns its ID.
func (app *testApp) createBudget(t *testing.T, token, body string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/budgets", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	budget := result["budget"].(map[string]interface{})
	return budget["id"].(float64)
}

// monthEvents fetches the materialized view for one budget month.
func (app *testApp) monthEvents(t *testing.T, token string, budgetID float64, month string) map[string]interface{} {
	t.Helper()
	rec := app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/months/%s", budgetID, month), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("month events failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}
