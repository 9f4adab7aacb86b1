package services

import (
	"gorm.io/gorm"

	"paywise/internal/calendar"
	"paywise/internal/models"
	"paywise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// SavingsSettings carries a budget's automatic savings allocation.
type SavingsSettings struct {
	Enabled bool
	Type    models.AmountType
	Amount  int64
}

// ThresholdSettings carries a budget's minimum balance threshold.
type ThresholdSettings struct {
	Enabled bool
	Amount  int64
}

// BudgetPatch holds optional budget settings updates.
type BudgetPatch struct {
	Name         *string
	FirstPayDate *string
	PayFrequency *models.Frequency
	PayAmount    *int64
	Savings      *SavingsSettings
	Threshold    *ThresholdSettings
}

// MonthView is the materialized state of one budget month: its dated
// events in ascending date order plus the recomputed summary.
type MonthView struct {
	Month       string               `json:"month"`
	Occurrences []models.Occurrence  `json:"occurrences"`
	Summary     *models.MonthSummary `json:"summary"`
}

// BudgetServicer defines the contract for budget-level orchestration:
// settings, the rolling month window, and the month event view.
type BudgetServicer interface {
	CreateBudget(userID uint, name, firstPayDate string, payFrequency models.Frequency, payAmount int64, savings *SavingsSettings, threshold *ThresholdSettings) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, patch BudgetPatch) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	MonthEvents(userID, budgetID uint, month calendar.Month) (*MonthView, error)
	EnsureActiveMonths(userID, budgetID uint, from calendar.Month, count int) ([]models.MonthSummary, error)
}

// DefinitionServicer defines the contract for recurring definition CRUD.
type DefinitionServicer interface {
	CreateDefinition(userID, budgetID uint, kind models.Kind, name string, amount int64, source models.IncomeSource, frequency models.Frequency, anchorDay int, startDate string) (*models.Definition, error)
	GetBudgetDefinitions(userID, budgetID uint, page pagination.PageRequest, kind *models.Kind) (*pagination.PageResponse[models.Definition], error)
	GetDefinitionByID(userID, definitionID uint) (*models.Definition, error)
	DeleteDefinition(userID, definitionID uint) error
}

// PropagationMode selects how far a series edit reaches.
type PropagationMode string

const (
	PropagateCurrent PropagationMode = "current"
	PropagateAll     PropagationMode = "all"
)

// DeleteMode selects the deletion semantics for an occurrence.
type DeleteMode string

const (
	DeleteCurrent DeleteMode = "current"
	DeleteFuture  DeleteMode = "future"
	DeleteAll     DeleteMode = "all"
)

// OccurrencePatch holds optional single-occurrence edits. Applying any
// of these detaches the occurrence from automatic regeneration.
type OccurrencePatch struct {
	Name   *string
	Amount *int64
	Date   *string
}

// SeriesPatch holds optional series-wide edits to a definition.
type SeriesPatch struct {
	Name      *string
	Amount    *int64
	AnchorDay *int
	Frequency *models.Frequency
}

// OccurrenceStorer reconciles definitions with persisted occurrences:
// materialization, per-occurrence overrides, and the three-tier
// deletion semantics.
type OccurrenceStorer interface {
	Materialize(userID, budgetID uint, month calendar.Month) ([]models.Occurrence, error)
	MonthOccurrences(userID, budgetID uint, month calendar.Month) ([]models.Occurrence, error)
	CreateOneTime(userID, budgetID uint, kind models.Kind, name, date string, amount int64) (*models.Occurrence, error)
	GetOccurrenceByID(userID, occurrenceID uint) (*models.Occurrence, error)
	UpdateOccurrence(userID, occurrenceID uint, patch OccurrencePatch) (*models.Occurrence, error)
	SetPaid(userID, occurrenceID uint, paid bool) (*models.Occurrence, error)
	UpdateSeries(userID, occurrenceID uint, patch SeriesPatch, propagate PropagationMode, from string) error
	DeleteOccurrence(userID, occurrenceID uint, mode DeleteMode) error

	// MaterializeDefinition projects a single definition into a month
	// within an existing transaction. Used by definition creation.
	MaterializeDefinition(tx *gorm.DB, def *models.Definition, month calendar.Month) error
}

// SummaryServicer computes and caches per-month aggregates.
type SummaryServicer interface {
	Summarize(userID, budgetID uint, month calendar.Month) (*models.MonthSummary, error)
	GetSummary(userID, budgetID uint, month calendar.Month) (*models.MonthSummary, error)
	GetBudgetSummaries(userID, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.MonthSummary], error)

	// Refresh recomputes one month's summary within an existing
	// transaction. Every occurrence mutation goes through this.
	Refresh(tx *gorm.DB, budgetID uint, month calendar.Month) (*models.MonthSummary, error)
}
