package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"paywise/internal/calendar"
	apperrors "paywise/internal/errors"
	"paywise/internal/models"
	"paywise/internal/pagination"
	"paywise/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	createFn       func(userID uint, name, firstPayDate string, payFrequency models.Frequency, payAmount int64, savings *services.SavingsSettings, threshold *services.ThresholdSettings) (*models.Budget, error)
	getUserFn      func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	getByIDFn      func(userID, budgetID uint) (*models.Budget, error)
	updateFn       func(userID, budgetID uint, patch services.BudgetPatch) (*models.Budget, error)
	deleteFn       func(userID, budgetID uint) error
	monthEventsFn  func(userID, budgetID uint, month calendar.Month) (*services.MonthView, error)
	ensureMonthsFn func(userID, budgetID uint, from calendar.Month, count int) ([]models.MonthSummary, error)
}

func (m *mockBudgetService) CreateBudget(userID uint, name, firstPayDate string, payFrequency models.Frequency, payAmount int64, savings *services.SavingsSettings, threshold *services.ThresholdSettings) (*models.Budget, error) {
	if m.createFn != nil {
		return m.createFn(userID, name, firstPayDate, payFrequency, payAmount, savings, threshold)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	if m.getUserFn != nil {
		return m.getUserFn(userID, page)
	}
	return &pagination.PageResponse[models.Budget]{}, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(userID, budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID uint, patch services.BudgetPatch) (*models.Budget, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, budgetID, patch)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) MonthEvents(userID, budgetID uint, month calendar.Month) (*services.MonthView, error) {
	if m.monthEventsFn != nil {
		return m.monthEventsFn(userID, budgetID, month)
	}
	return &services.MonthView{}, nil
}

func (m *mockBudgetService) EnsureActiveMonths(userID, budgetID uint, from calendar.Month, count int) ([]models.MonthSummary, error) {
	if m.ensureMonthsFn != nil {
		return m.ensureMonthsFn(userID, budgetID, from, count)
	}
	return []models.MonthSummary{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.GetBudgets)
	auth.GET("/budgets/:id", handler.GetBudget)
	auth.PATCH("/budgets/:id", handler.UpdateBudget)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)
	auth.GET("/budgets/:id/months/:month", handler.GetMonthEvents)
	auth.POST("/budgets/:id/months", handler.EnsureMonths)
	return r
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		service := &mockBudgetService{
			createFn: func(userID uint, name, firstPayDate string, payFrequency models.Frequency, payAmount int64, _ *services.SavingsSettings, _ *services.ThresholdSettings) (*models.Budget, error) {
				return &models.Budget{
					Base:         models.Base{ID: 1},
					UserID:       userID,
					Name:         name,
					FirstPayDate: firstPayDate,
					PayFrequency: payFrequency,
					PayAmount:    payAmount,
				}, nil
			},
		}
		handler := NewBudgetHandler(service, 3)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"name":"Household","first_pay_date":"2025-01-03","pay_frequency":"Bi-Weekly","pay_amount":200000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		budget := result["budget"].(map[string]interface{})
		if budget["name"] != "Household" {
			t.Errorf("unexpected name: %v", budget["name"])
		}
	})

	t.Run("returns 400 on unknown pay frequency", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, 3)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"name":"Household","first_pay_date":"2025-01-03","pay_frequency":"Fortnightly","pay_amount":200000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetMonthEvents(t *testing.T) {
	t.Run("returns the materialized view", func(t *testing.T) {
		service := &mockBudgetService{
			monthEventsFn: func(_, _ uint, month calendar.Month) (*services.MonthView, error) {
				return &services.MonthView{
					Month: month.Key(),
					Occurrences: []models.Occurrence{
						{Base: models.Base{ID: 1}, Name: "Rent", Date: "2025-02-01", Amount: 120000},
					},
					Summary: &models.MonthSummary{Month: month.Key(), TotalExpenses: 120000},
				}, nil
			},
		}
		handler := NewBudgetHandler(service, 3)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/1/months/2025-02", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["month"] != "2025-02" {
			t.Errorf("unexpected month: %v", result["month"])
		}
		occurrences := result["occurrences"].([]interface{})
		if len(occurrences) != 1 {
			t.Errorf("expected 1 occurrence, got %d", len(occurrences))
		}
	})

	t.Run("returns 400 on malformed month key", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, 3)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/1/months/Feb-2025", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_EnsureMonths(t *testing.T) {
	t.Run("falls back to the configured window when count is omitted", func(t *testing.T) {
		var gotFrom calendar.Month
		var gotCount int
		service := &mockBudgetService{
			ensureMonthsFn: func(_, _ uint, from calendar.Month, count int) ([]models.MonthSummary, error) {
				gotFrom = from
				gotCount = count
				return []models.MonthSummary{}, nil
			},
		}
		handler := NewBudgetHandler(service, 3)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets/1/months", `{"from":"2025-02"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFrom.Key() != "2025-02" {
			t.Errorf("expected from 2025-02, got %s", gotFrom.Key())
		}
		if gotCount != 3 {
			t.Errorf("expected default window 3, got %d", gotCount)
		}
	})

	t.Run("honors an explicit count", func(t *testing.T) {
		var gotCount int
		service := &mockBudgetService{
			ensureMonthsFn: func(_, _ uint, _ calendar.Month, count int) ([]models.MonthSummary, error) {
				gotCount = count
				return []models.MonthSummary{}, nil
			},
		}
		handler := NewBudgetHandler(service, 3)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets/1/months", `{"from":"2025-02","count":6}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotCount != 6 {
			t.Errorf("expected count 6, got %d", gotCount)
		}
	})

	t.Run("returns 400 when count exceeds the cap", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, 3)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets/1/months", `{"from":"2025-02","count":48}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, 3)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/1", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("returns 404 for an unknown budget", func(t *testing.T) {
		service := &mockBudgetService{
			deleteFn: func(_, _ uint) error {
				return apperrors.ErrBudgetNotFound
			},
		}
		handler := NewBudgetHandler(service, 3)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/99", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
