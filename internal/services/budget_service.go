package services

import (
	"errors"

	"gorm.io/gorm"

	"paywise/internal/calendar"
	apperrors "paywise/internal/errors"
	"paywise/internal/models"
	"paywise/internal/pagination"
)

type budgetService struct {
	db        *gorm.DB
	store     OccurrenceStorer
	summaries SummaryServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, store OccurrenceStorer, summaries SummaryServicer) BudgetServicer {
	return &budgetService{db: db, store: store, summaries: summaries}
}

// CreateBudget creates a budget and seeds its paycheck income series
// from the pay schedule, all in one transaction. The paycheck anchors on
// the first pay date: weekly schedules step from it, monthly schedules
// reuse its day of month.
func (s *budgetService) CreateBudget(userID uint, name, firstPayDate string, payFrequency models.Frequency, payAmount int64, savings *SavingsSettings, threshold *ThresholdSettings) (*models.Budget, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "name is required")
	}
	if payAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "pay amount must not be negative")
	}
	firstPay, err := calendar.ParseDate(firstPayDate)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, err.Error())
	}
	if savings != nil && savings.Amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "savings amount must not be negative")
	}
	if savings != nil && savings.Type == models.AmountTypePercent && savings.Amount > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "savings percentage must not exceed 100")
	}
	if threshold != nil && threshold.Amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "threshold amount must not be negative")
	}

	budget := &models.Budget{
		UserID:       userID,
		Name:         name,
		FirstPayDate: firstPayDate,
		PayFrequency: payFrequency,
		PayAmount:    payAmount,
	}
	if savings != nil {
		budget.SavingsEnabled = savings.Enabled
		budget.SavingsType = savings.Type
		budget.SavingsAmount = savings.Amount
	}
	if threshold != nil {
		budget.ThresholdEnabled = threshold.Enabled
		budget.ThresholdAmount = threshold.Amount
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		paycheck := models.Definition{
			BudgetID:    budget.ID,
			Kind:        models.KindIncome,
			Name:        "Paycheck",
			Amount:      payAmount,
			Source:      models.SourcePaycheck,
			IsAutomated: true,
			Frequency:   payFrequency,
			AnchorDay:   firstPay.Day(),
			StartDate:   firstPayDate,
		}
		if err := tx.Create(&paycheck).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// GetUserBudgets lists the user's budgets, newest first.
func (s *budgetService) GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	query := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}

	var budgets []models.Budget
	if err := query.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}

	resp := pagination.NewPageResponse(budgets, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetBudgetByID retrieves a budget by ID for a specific user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	return getOwnedBudget(s.db, userID, budgetID)
}

// UpdateBudget applies settings changes. Pay schedule changes flow into
// the seeded paycheck series: the definition is rewritten and its
// non-overridden occurrences from the new first pay date onward are
// dropped for re-derivation. Savings and threshold changes invalidate
// every cached summary, since both feed the monthly totals.
func (s *budgetService) UpdateBudget(userID, budgetID uint, patch BudgetPatch) (*models.Budget, error) {
	budget, err := getOwnedBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}

	if patch.PayAmount != nil && *patch.PayAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "pay amount must not be negative")
	}
	if patch.FirstPayDate != nil {
		if _, err := calendar.ParseDate(*patch.FirstPayDate); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, err.Error())
		}
	}
	if patch.Savings != nil {
		if patch.Savings.Amount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "savings amount must not be negative")
		}
		if patch.Savings.Type == models.AmountTypePercent && patch.Savings.Amount > 100 {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "savings percentage must not exceed 100")
		}
	}
	if patch.Threshold != nil && patch.Threshold.Amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "threshold amount must not be negative")
	}

	updates := make(map[string]interface{})
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.FirstPayDate != nil {
		updates["first_pay_date"] = *patch.FirstPayDate
	}
	if patch.PayFrequency != nil {
		updates["pay_frequency"] = *patch.PayFrequency
	}
	if patch.PayAmount != nil {
		updates["pay_amount"] = *patch.PayAmount
	}
	if patch.Savings != nil {
		updates["savings_enabled"] = patch.Savings.Enabled
		updates["savings_type"] = patch.Savings.Type
		updates["savings_amount"] = patch.Savings.Amount
	}
	if patch.Threshold != nil {
		updates["threshold_enabled"] = patch.Threshold.Enabled
		updates["threshold_amount"] = patch.Threshold.Amount
	}
	if len(updates) == 0 {
		return budget, nil
	}

	payChanged := patch.FirstPayDate != nil || patch.PayFrequency != nil || patch.PayAmount != nil

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(budget).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}

		if payChanged {
			if err := s.reschedulePaycheck(tx, budget); err != nil {
				return err
			}
		}

		if patch.Savings != nil || patch.Threshold != nil || payChanged {
			return s.refreshAllSummaries(tx, budgetID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// reschedulePaycheck rewrites the seeded paycheck definition from the
// budget's current pay schedule and drops its pending non-overridden
// occurrences from the new first pay date onward.
func (s *budgetService) reschedulePaycheck(tx *gorm.DB, budget *models.Budget) error {
	var paycheck models.Definition
	err := tx.Where("budget_id = ? AND kind = ? AND source = ?",
		budget.ID, models.KindIncome, models.SourcePaycheck).First(&paycheck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}

	firstPay, err := calendar.ParseDate(budget.FirstPayDate)
	if err != nil {
		return apperrors.WithMessage(apperrors.ErrValidation, err.Error())
	}

	updates := map[string]interface{}{
		"amount":     budget.PayAmount,
		"frequency":  budget.PayFrequency,
		"anchor_day": firstPay.Day(),
		"start_date": budget.FirstPayDate,
	}
	if err := tx.Model(&paycheck).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}

	if err := tx.Where("definition_id = ? AND date >= ? AND override = ?",
		paycheck.ID, budget.FirstPayDate, false).
		Delete(&models.Occurrence{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	return nil
}

// refreshAllSummaries recomputes every month summary the budget has.
func (s *budgetService) refreshAllSummaries(tx *gorm.DB, budgetID uint) error {
	var keys []string
	if err := tx.Model(&models.MonthSummary{}).
		Where("budget_id = ?", budgetID).
		Order("month ASC").
		Pluck("month", &keys).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	for _, key := range keys {
		month, err := calendar.ParseMonth(key)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if _, err := s.summaries.Refresh(tx, budgetID, month); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBudget removes a budget together with everything under it.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := getOwnedBudget(s.db, userID, budgetID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var defIDs []uint
		if err := tx.Model(&models.Definition{}).Where("budget_id = ?", budgetID).
			Pluck("id", &defIDs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		if len(defIDs) > 0 {
			if err := tx.Where("definition_id IN ?", defIDs).Delete(&models.Tombstone{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStore, err)
			}
		}
		if err := tx.Where("budget_id = ?", budgetID).Delete(&models.Occurrence{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		if err := tx.Where("budget_id = ?", budgetID).Delete(&models.Definition{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		if err := tx.Where("budget_id = ?", budgetID).Delete(&models.MonthSummary{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		if err := tx.Delete(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		return nil
	})
}

// MonthEvents materializes the month and returns its full state: every
// occurrence in ascending date order plus the recomputed summary.
func (s *budgetService) MonthEvents(userID, budgetID uint, month calendar.Month) (*MonthView, error) {
	occurrences, err := s.store.Materialize(userID, budgetID, month)
	if err != nil {
		return nil, err
	}
	summary, err := s.summaries.GetSummary(userID, budgetID, month)
	if err != nil {
		return nil, err
	}
	return &MonthView{
		Month:       month.Key(),
		Occurrences: occurrences,
		Summary:     summary,
	}, nil
}

// EnsureActiveMonths materializes a consecutive window of months
// starting at from, returning their summaries in month order. The
// caller supplies the window start; the service never assumes what
// "today" is.
func (s *budgetService) EnsureActiveMonths(userID, budgetID uint, from calendar.Month, count int) ([]models.MonthSummary, error) {
	if count < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "count must be at least 1")
	}
	if _, err := getOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	var defs []models.Definition
	if err := s.db.Where("budget_id = ? AND is_automated = ?", budgetID, true).Find(&defs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}

	summaries := make([]models.MonthSummary, 0, count)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, month := range calendar.Enumerate(from, count) {
			for i := range defs {
				if err := s.store.MaterializeDefinition(tx, &defs[i], month); err != nil {
					return err
				}
			}
			summary, err := s.summaries.Refresh(tx, budgetID, month)
			if err != nil {
				return err
			}
			summaries = append(summaries, *summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
