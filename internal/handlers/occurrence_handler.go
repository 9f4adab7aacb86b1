package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "paywise/internal/errors"
	"paywise/internal/models"
	"paywise/internal/services"
)

// OccurrenceHandler handles dated event requests: one-time creation,
// single-occurrence edits, paid status, series edits, and deletion.
type OccurrenceHandler struct {
	store services.OccurrenceStorer
}

// NewOccurrenceHandler creates a new OccurrenceHandler.
func NewOccurrenceHandler(store services.OccurrenceStorer) *OccurrenceHandler {
	return &OccurrenceHandler{store: store}
}

// CreateOneTimeRequest represents the request payload for a one-off
// income or expense that belongs to no series.
type CreateOneTimeRequest struct {
	Kind   models.Kind `json:"kind" binding:"required,kind"`
	Name   string      `json:"name" binding:"required,min=1,max=100"`
	Date   string      `json:"date" binding:"required,iso_date"`
	Amount int64       `json:"amount" binding:"gte=0"`
}

// UpdateOccurrenceRequest represents a single-occurrence edit. Any field
// set here marks the occurrence overridden.
type UpdateOccurrenceRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=100"`
	Amount *int64  `json:"amount" binding:"omitempty,gte=0"`
	Date   *string `json:"date" binding:"omitempty,iso_date"`
}

// SetPaidRequest represents the paid status toggle payload.
type SetPaidRequest struct {
	IsPaid *bool `json:"is_paid" binding:"required"`
}

// UpdateSeriesRequest represents a series-scoped edit.
type UpdateSeriesRequest struct {
	Name      *string           `json:"name" binding:"omitempty,min=1,max=100"`
	Amount    *int64            `json:"amount" binding:"omitempty,gte=0"`
	AnchorDay *int              `json:"anchor_day" binding:"omitempty,anchor_day"`
	Frequency *models.Frequency `json:"frequency" binding:"omitempty,frequency"`
	Propagate string            `json:"propagate" binding:"required,propagation"`
	From      string            `json:"from" binding:"required,iso_date"`
}

// DeleteOccurrenceRequest selects the deletion scope.
type DeleteOccurrenceRequest struct {
	Mode string `form:"mode" binding:"omitempty,delete_mode"`
}

// CreateOneTime records a one-off event
// @Summary     Create a one-time event
// @Description Record a one-off income or expense that never repeats
// @Tags        occurrences
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Param       request body CreateOneTimeRequest true "Event details"
// @Success     201 {object} models.Occurrence "Occurrence created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/occurrences [post]
func (h *OccurrenceHandler) CreateOneTime(c *gin.Context) {
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

	var req CreateOneTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	occ, err := h.store.CreateOneTime(userID, budgetID, req.Kind, req.Name, req.Date, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"occurrence": occ})
}

// GetOccurrence retrieves one occurrence
// @Summary     Get an occurrence
// @Description Get an occurrence by ID
// @Tags        occurrences
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Occurrence ID"
// @Success     200 {object} models.Occurrence "Occurrence"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /occurrences/{id} [get]
func (h *OccurrenceHandler) GetOccurrence(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	occurrenceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	occ, err := h.store.GetOccurrenceByID(userID, occurrenceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"occurrence": occ})
}

// UpdateOccurrence edits a single occurrence
// @Summary     Update an occurrence
// @Description Edit one occurrence; the edit marks it overridden and detaches it from regeneration
// @Tags        occurrences
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Occurrence ID"
// @Param       request body UpdateOccurrenceRequest true "Fields to update"
// @Success     200 {object} models.Occurrence "Occurrence updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /occurrences/{id} [patch]
func (h *OccurrenceHandler) UpdateOccurrence(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	occurrenceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	occ, err := h.store.UpdateOccurrence(userID, occurrenceID, services.OccurrencePatch{
		Name:   req.Name,
		Amount: req.Amount,
		Date:   req.Date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"occurrence": occ})
}

// SetPaid toggles an expense's paid status
// @Summary     Set paid status
// @Description Mark an expense occurrence paid or unpaid
// @Tags        occurrences
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Occurrence ID"
// @Param       request body SetPaidRequest true "Paid status"
// @Success     200 {object} models.Occurrence "Occurrence updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /occurrences/{id}/paid [put]
func (h *OccurrenceHandler) SetPaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	occurrenceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	occ, err := h.store.SetPaid(userID, occurrenceID, *req.IsPaid)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"occurrence": occ})
}

// UpdateSeries edits the series behind an occurrence
// @Summary     Update a series
// @Description Apply an edit to the series behind an occurrence, to this occurrence only or to the whole series going forward
// @Tags        occurrences
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Occurrence ID"
// @Param       request body UpdateSeriesRequest true "Series edit and propagation scope"
// @Success     204 "Series updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "One-time items have no series"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /occurrences/{id}/series [patch]
func (h *OccurrenceHandler) UpdateSeries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	occurrenceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	patch := services.SeriesPatch{
		Name:      req.Name,
		Amount:    req.Amount,
		AnchorDay: req.AnchorDay,
		Frequency: req.Frequency,
	}

	err = h.store.UpdateSeries(userID, occurrenceID, patch, services.PropagationMode(req.Propagate), req.From)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteOccurrence deletes with selectable scope
// @Summary     Delete an occurrence
// @Description Delete this occurrence only, this and all future ones, or the entire series
// @Tags        occurrences
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Occurrence ID"
// @Param       mode query string false "Deletion scope: current (default), future, or all"
// @Success     204 "Occurrence deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "One-time items have no series"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /occurrences/{id} [delete]
func (h *OccurrenceHandler) DeleteOccurrence(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	occurrenceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DeleteOccurrenceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}
	mode := services.DeleteMode(req.Mode)
	if mode == "" {
		mode = services.DeleteCurrent
	}

	if err := h.store.DeleteOccurrence(userID, occurrenceID, mode); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
