package services

import (
	"errors"

	"gorm.io/gorm"

	"paywise/internal/calendar"
	apperrors "paywise/internal/errors"
	"paywise/internal/models"
	"paywise/internal/pagination"
)

// summaryService computes per-month aggregates from occurrences.
type summaryService struct {
	db *gorm.DB
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(db *gorm.DB) SummaryServicer {
	return &summaryService{db: db}
}

// Summarize recomputes the summary for one budget month and returns it.
func (s *summaryService) Summarize(userID, budgetID uint, month calendar.Month) (*models.MonthSummary, error) {
	if _, err := getOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	var summary *models.MonthSummary
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		summary, txErr = s.Refresh(tx, budgetID, month)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GetSummary returns the cached summary for a budget month.
func (s *summaryService) GetSummary(userID, budgetID uint, month calendar.Month) (*models.MonthSummary, error) {
	if _, err := getOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	var summary models.MonthSummary
	err := s.db.Where("budget_id = ? AND month = ?", budgetID, month.Key()).First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSummaryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	return &summary, nil
}

// GetBudgetSummaries returns a paginated list of month summaries for a
// budget, newest month first.
func (s *summaryService) GetBudgetSummaries(userID, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.MonthSummary], error) {
	if _, err := getOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.MonthSummary{}).Where("budget_id = ?", budgetID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}

	var summaries []models.MonthSummary
	if err := base.Scopes(pagination.Paginate(page)).Order("month DESC").Find(&summaries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}

	result := pagination.NewPageResponse(summaries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Refresh recomputes one month's summary from its occurrences inside an
// existing transaction, upserting the cached row. The whole summary is
// rebuilt rather than patched so it can never drift from the rows it
// derives from. Zero occurrences yields an all-zero summary.
func (s *summaryService) Refresh(tx *gorm.DB, budgetID uint, month calendar.Month) (*models.MonthSummary, error) {
	var occurrences []models.Occurrence
	// Month filtering is a string prefix match on the ISO date, which
	// sidesteps timezone-sensitive parsing at month boundaries.
	err := tx.Where("budget_id = ? AND date LIKE ?", budgetID, month.Key()+"-%").Find(&occurrences).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}

	var totalIncome, totalExpenses, expensesPaid int64
	for i := range occurrences {
		occ := &occurrences[i]
		switch occ.Kind {
		case models.KindIncome:
			totalIncome += occ.Amount
		case models.KindExpense:
			totalExpenses += occ.Amount
			if occ.IsPaid {
				expensesPaid += occ.Amount
			}
		}
	}

	var budget models.Budget
	if err := tx.First(&budget, budgetID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}

	var totalSavings int64
	if budget.SavingsEnabled {
		switch budget.SavingsType {
		case models.AmountTypePercent:
			totalSavings = totalIncome * budget.SavingsAmount / 100
		case models.AmountTypeFlat:
			totalSavings = budget.SavingsAmount
		}
	}

	// Balance subtracts committed expenses, paid or not; the paid-to-date
	// figure is reported separately.
	summary := models.MonthSummary{
		BudgetID:      budgetID,
		Month:         month.Key(),
		TotalIncome:   totalIncome,
		TotalExpenses: totalExpenses,
		ExpensesPaid:  expensesPaid,
		TotalSavings:  totalSavings,
		Balance:       totalIncome - totalExpenses,
	}

	var existing models.MonthSummary
	err = tx.Where("budget_id = ? AND month = ?", budgetID, month.Key()).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(&summary).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStore, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	default:
		summary.Base = existing.Base
		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"total_income":   summary.TotalIncome,
			"total_expenses": summary.TotalExpenses,
			"expenses_paid":  summary.ExpensesPaid,
			"total_savings":  summary.TotalSavings,
			"balance":        summary.Balance,
		}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStore, err)
		}
	}

	return &summary, nil
}
