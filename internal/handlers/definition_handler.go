package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "paywise/internal/errors"
	"paywise/internal/models"
	"paywise/internal/pagination"
	"paywise/internal/services"
)

// DefinitionHandler handles recurring definition requests.
type DefinitionHandler struct {
	definitionService services.DefinitionServicer
}

// NewDefinitionHandler creates a new DefinitionHandler.
func NewDefinitionHandler(definitionService services.DefinitionServicer) *DefinitionHandler {
	return &DefinitionHandler{definitionService: definitionService}
}

// CreateDefinitionRequest represents the request payload for creating a
// recurring income or expense definition.
type CreateDefinitionRequest struct {
	Kind      models.Kind         `json:"kind" binding:"required,kind"`
	Name      string              `json:"name" binding:"required,min=1,max=100"`
	Amount    int64               `json:"amount" binding:"gte=0"`
	Source    models.IncomeSource `json:"source" binding:"omitempty,income_source"`
	Frequency models.Frequency    `json:"frequency" binding:"required,frequency"`
	AnchorDay int                 `json:"anchor_day" binding:"required,anchor_day"`
	StartDate string              `json:"start_date" binding:"required,iso_date"`
}

// ListDefinitionsRequest represents the query parameters for listing
// definitions.
type ListDefinitionsRequest struct {
	pagination.PageRequest
	Kind *models.Kind `form:"kind" binding:"omitempty,kind"`
}

// CreateDefinition handles definition creation
// @Summary     Create a definition
// @Description Create a recurring income or expense definition and project it into the budget's tracked months
// @Tags        definitions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Param       request body CreateDefinitionRequest true "Definition details"
// @Success     201 {object} models.Definition "Definition created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/definitions [post]
func (h *DefinitionHandler) CreateDefinition(c *gin.Context) {
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

	var req CreateDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	def, err := h.definitionService.CreateDefinition(
		userID,
		budgetID,
		req.Kind,
		req.Name,
		req.Amount,
		req.Source,
		req.Frequency,
		req.AnchorDay,
		req.StartDate,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"definition": def})
}

// GetDefinitions lists a budget's definitions
// @Summary     List definitions
// @Description Get a budget's definitions, optionally filtered by kind
// @Tags        definitions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Param       kind query string false "Filter by kind (income or expense)"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Items per page"
// @Success     200 {object} pagination.PageResponse[models.Definition] "Definitions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/definitions [get]
func (h *DefinitionHandler) GetDefinitions(c *gin.Context) {
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

	var req ListDefinitionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	defs, err := h.definitionService.GetBudgetDefinitions(userID, budgetID, req.PageRequest, req.Kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, defs)
}

// GetDefinition retrieves one definition
// @Summary     Get a definition
// @Description Get a definition by ID
// @Tags        definitions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Definition ID"
// @Success     200 {object} models.Definition "Definition"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /definitions/{id} [get]
func (h *DefinitionHandler) GetDefinition(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	definitionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	def, err := h.definitionService.GetDefinitionByID(userID, definitionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"definition": def})
}

// DeleteDefinition deletes a definition and its occurrences
// @Summary     Delete a definition
// @Description Delete a definition together with all of its occurrences
// @Tags        definitions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Definition ID"
// @Success     204 "Definition deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /definitions/{id} [delete]
func (h *DefinitionHandler) DeleteDefinition(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	definitionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.definitionService.DeleteDefinition(userID, definitionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
