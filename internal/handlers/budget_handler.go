package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paywise/internal/calendar"
	apperrors "paywise/internal/errors"
	"paywise/internal/models"
	"paywise/internal/pagination"
	"paywise/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer

	// defaultWindow is the number of months EnsureMonths materializes
	// when the request does not say how many.
	defaultWindow int
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, defaultWindow int) *BudgetHandler {
	if defaultWindow < 1 {
		defaultWindow = 1
	}
	return &BudgetHandler{budgetService: budgetService, defaultWindow: defaultWindow}
}

// SavingsRequest represents a budget's savings allocation settings.
type SavingsRequest struct {
	Enabled bool              `json:"enabled"`
	Type    models.AmountType `json:"type" binding:"omitempty,amount_type"`
	Amount  int64             `json:"amount" binding:"gte=0"`
}

// ThresholdRequest represents a budget's balance threshold settings.
type ThresholdRequest struct {
	Enabled bool  `json:"enabled"`
	Amount  int64 `json:"amount" binding:"gte=0"`
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name         string            `json:"name" binding:"required,min=1,max=100"`
	FirstPayDate string            `json:"first_pay_date" binding:"required,iso_date"`
	PayFrequency models.Frequency  `json:"pay_frequency" binding:"required,frequency"`
	PayAmount    int64             `json:"pay_amount" binding:"gte=0"`
	Savings      *SavingsRequest   `json:"savings"`
	Threshold    *ThresholdRequest `json:"threshold"`
}

// UpdateBudgetRequest represents the request payload for updating budget settings.
type UpdateBudgetRequest struct {
	Name         *string           `json:"name" binding:"omitempty,min=1,max=100"`
	FirstPayDate *string           `json:"first_pay_date" binding:"omitempty,iso_date"`
	PayFrequency *models.Frequency `json:"pay_frequency" binding:"omitempty,frequency"`
	PayAmount    *int64            `json:"pay_amount" binding:"omitempty,gte=0"`
	Savings      *SavingsRequest   `json:"savings"`
	Threshold    *ThresholdRequest `json:"threshold"`
}

// EnsureMonthsRequest represents the request payload for materializing a
// rolling window of months.
type EnsureMonthsRequest struct {
	From  string `json:"from" binding:"required,month_key"`
	Count int    `json:"count" binding:"omitempty,min=1,max=24"`
}

func savingsSettings(req *SavingsRequest) *services.SavingsSettings {
	if req == nil {
		return nil
	}
	return &services.SavingsSettings{Enabled: req.Enabled, Type: req.Type, Amount: req.Amount}
}

func thresholdSettings(req *ThresholdRequest) *services.ThresholdSettings {
	if req == nil {
		return nil
	}
	return &services.ThresholdSettings{Enabled: req.Enabled, Amount: req.Amount}
}

// CreateBudget handles budget creation
// @Summary     Create a budget
// @Description Create a budget with its pay schedule; the paycheck income series is seeded automatically
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(
		userID,
		req.Name,
		req.FirstPayDate,
		req.PayFrequency,
		req.PayAmount,
		savingsSettings(req.Savings),
		thresholdSettings(req.Threshold),
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets lists the user's budgets
// @Summary     List budgets
// @Description Get the authenticated user's budgets, newest first
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Items per page"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Budgets"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	budgets, err := h.budgetService.GetUserBudgets(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budgets)
}

// GetBudget retrieves one budget
// @Summary     Get a budget
// @Description Get a budget by ID
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.Budget "Budget"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget updates budget settings
// @Summary     Update a budget
// @Description Update budget settings; pay schedule changes reschedule the paycheck series
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Settings to update"
// @Success     200 {object} models.Budget "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [patch]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	patch := services.BudgetPatch{
		Name:         req.Name,
		FirstPayDate: req.FirstPayDate,
		PayFrequency: req.PayFrequency,
		PayAmount:    req.PayAmount,
		Savings:      savingsSettings(req.Savings),
		Threshold:    thresholdSettings(req.Threshold),
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget deletes a budget
// @Summary     Delete a budget
// @Description Delete a budget and everything under it
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     204 "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMonthEvents returns a materialized month
// @Summary     Get month events
// @Description Materialize and list a month's occurrences with its summary
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Param       month path string true "Month key (YYYY-MM)"
// @Success     200 {object} services.MonthView "Month events and summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/months/{month} [get]
func (h *BudgetHandler) GetMonthEvents(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := parsePathMonth(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.budgetService.MonthEvents(userID, budgetID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// EnsureMonths materializes a window of months
// @Summary     Ensure active months
// @Description Materialize a consecutive window of months starting at the given month
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Param       request body EnsureMonthsRequest true "Window start and length"
// @Success     200 {array} models.MonthSummary "Summaries of the ensured months"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/months [post]
func (h *BudgetHandler) EnsureMonths(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EnsureMonthsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	from, err := calendar.ParseMonth(req.From)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}
	count := req.Count
	if count == 0 {
		count = h.defaultWindow
	}

	summaries, err := h.budgetService.EnsureActiveMonths(userID, budgetID, from, count)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}
