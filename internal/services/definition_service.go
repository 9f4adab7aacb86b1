package services

import (
	"gorm.io/gorm"

	"paywise/internal/calendar"
	apperrors "paywise/internal/errors"
	"paywise/internal/models"
	"paywise/internal/pagination"
)

type definitionService struct {
	db        *gorm.DB
	store     OccurrenceStorer
	summaries SummaryServicer
}

// NewDefinitionService creates a new DefinitionServicer.
func NewDefinitionService(db *gorm.DB, store OccurrenceStorer, summaries SummaryServicer) DefinitionServicer {
	return &definitionService{db: db, store: store, summaries: summaries}
}

// CreateDefinition records a recurring income or expense template and
// immediately projects it into every month the budget has already
// ensured, so the new series shows up without waiting for the next
// materialize pass. Misc/One time income is stored non-automated with a
// single occurrence on its start date and never projects beyond it.
func (s *definitionService) CreateDefinition(userID, budgetID uint, kind models.Kind, name string, amount int64, source models.IncomeSource, frequency models.Frequency, anchorDay int, startDate string) (*models.Definition, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "name is required")
	}
	if amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must not be negative")
	}
	if anchorDay < 1 || anchorDay > 31 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "anchor day must be between 1 and 31")
	}
	start, err := calendar.ParseDate(startDate)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, err.Error())
	}
	if kind == models.KindExpense && source != "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "source applies to income only")
	}

	if _, err := getOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	def := &models.Definition{
		BudgetID:    budgetID,
		Kind:        kind,
		Name:        name,
		Amount:      amount,
		Source:      source,
		IsAutomated: kind == models.KindExpense || source != models.SourceOneTime,
		Frequency:   frequency,
		AnchorDay:   anchorDay,
		StartDate:   startDate,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(def).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}

		if !def.IsAutomated {
			occ := models.Occurrence{
				DefinitionID: &def.ID,
				BudgetID:     budgetID,
				Kind:         def.Kind,
				Name:         def.Name,
				Date:         def.StartDate,
				Amount:       def.Amount,
			}
			if err := tx.Create(&occ).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStore, err)
			}
			_, err := s.summaries.Refresh(tx, budgetID, calendar.MonthOf(start))
			return err
		}

		// Backfill the months this budget already tracks. New months pick
		// the definition up through the regular materialize pass.
		var keys []string
		if err := tx.Model(&models.MonthSummary{}).
			Where("budget_id = ? AND month >= ?", budgetID, calendar.MonthOf(start).Key()).
			Order("month ASC").
			Pluck("month", &keys).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		for _, key := range keys {
			month, err := calendar.ParseMonth(key)
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := s.store.MaterializeDefinition(tx, def, month); err != nil {
				return err
			}
			if _, err := s.summaries.Refresh(tx, budgetID, month); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

// GetBudgetDefinitions lists a budget's definitions, optionally filtered
// by kind, newest first.
func (s *definitionService) GetBudgetDefinitions(userID, budgetID uint, page pagination.PageRequest, kind *models.Kind) (*pagination.PageResponse[models.Definition], error) {
	if _, err := getOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	page.Defaults()

	query := s.db.Model(&models.Definition{}).Where("budget_id = ?", budgetID)
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}

	var defs []models.Definition
	if err := query.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&defs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}

	resp := pagination.NewPageResponse(defs, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetDefinitionByID retrieves a definition by ID for a specific user.
func (s *definitionService) GetDefinitionByID(userID, definitionID uint) (*models.Definition, error) {
	return getOwnedDefinition(s.db, userID, definitionID)
}

// DeleteDefinition removes a definition together with all of its
// occurrences and tombstones, equivalent to an all-scope delete from any
// of its occurrences.
func (s *definitionService) DeleteDefinition(userID, definitionID uint) error {
	def, err := getOwnedDefinition(s.db, userID, definitionID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		scope := tx.Where("definition_id = ?", def.ID)
		months, err := affectedMonths(tx, scope)
		if err != nil {
			return err
		}
		if err := tx.Where("definition_id = ?", def.ID).Delete(&models.Occurrence{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		if err := tx.Where("definition_id = ?", def.ID).Delete(&models.Tombstone{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		if err := tx.Delete(def).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		for _, m := range months {
			if _, err := s.summaries.Refresh(tx, def.BudgetID, m); err != nil {
				return err
			}
		}
		return nil
	})
}
