package services

import (
	"gorm.io/gorm"

	"paywise/internal/calendar"
	apperrors "paywise/internal/errors"
	"paywise/internal/models"
	"paywise/internal/recurrence"
)

// occurrenceStore reconciles definitions with their persisted
// occurrences. All multi-row mutations run inside a single transaction
// so a failure can never leave a definition pointing at a half-updated
// occurrence set.
type occurrenceStore struct {
	db        *gorm.DB
	summaries SummaryServicer
}

// NewOccurrenceStore creates a new OccurrenceStorer.
func NewOccurrenceStore(db *gorm.DB, summaries SummaryServicer) OccurrenceStorer {
	return &occurrenceStore{db: db, summaries: summaries}
}

// Materialize projects every automated definition of the budget into the
// month, inserting exactly one occurrence per projected date. Existing
// rows are never duplicated, tombstoned dates are skipped, and rows the
// user has overridden are left untouched. Running it twice is a no-op.
func (s *occurrenceStore) Materialize(userID, budgetID uint, month calendar.Month) ([]models.Occurrence, error) {
	if _, err := getOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	var defs []models.Definition
	if err := s.db.Where("budget_id = ? AND is_automated = ?", budgetID, true).Find(&defs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range defs {
			if err := s.MaterializeDefinition(tx, &defs[i], month); err != nil {
				return err
			}
		}
		_, err := s.summaries.Refresh(tx, budgetID, month)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.MonthOccurrences(userID, budgetID, month)
}

// MaterializeDefinition projects one definition into the month within an
// existing transaction.
func (s *occurrenceStore) MaterializeDefinition(tx *gorm.DB, def *models.Definition, month calendar.Month) error {
	dates, err := recurrence.Expand(def, month)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrValidation, err)
	}
	if len(dates) == 0 {
		return nil
	}

	prefix := month.Key() + "-%"

	var existing []models.Occurrence
	if err := tx.Where("definition_id = ? AND date LIKE ?", def.ID, prefix).Find(&existing).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	taken := make(map[string]bool, len(existing))
	for i := range existing {
		taken[existing[i].Date] = true
	}

	var tombstones []models.Tombstone
	if err := tx.Where("definition_id = ? AND date LIKE ?", def.ID, prefix).Find(&tombstones).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	deleted := make(map[string]bool, len(tombstones))
	for i := range tombstones {
		deleted[tombstones[i].Date] = true
	}

	for _, date := range dates {
		if taken[date] || deleted[date] {
			continue
		}
		occ := models.Occurrence{
			DefinitionID: &def.ID,
			BudgetID:     def.BudgetID,
			Kind:         def.Kind,
			Name:         def.Name,
			Date:         date,
			Amount:       def.Amount,
		}
		if err := tx.Create(&occ).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
	}
	return nil
}

// MonthOccurrences lists the budget's occurrences for a month in
// ascending date order, filtered by month-key prefix on the ISO date.
func (s *occurrenceStore) MonthOccurrences(userID, budgetID uint, month calendar.Month) ([]models.Occurrence, error) {
	if _, err := getOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	var occurrences []models.Occurrence
	err := s.db.
		Where("budget_id = ? AND date LIKE ?", budgetID, month.Key()+"-%").
		Order("date ASC, id ASC").
		Find(&occurrences).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	return occurrences, nil
}

// CreateOneTime inserts a detached occurrence that belongs to no
// definition, e.g. a one-off windfall or bill.
func (s *occurrenceStore) CreateOneTime(userID, budgetID uint, kind models.Kind, name, date string, amount int64) (*models.Occurrence, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "name is required")
	}
	if amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must not be negative")
	}
	if _, err := calendar.ParseDate(date); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, err.Error())
	}
	if _, err := getOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	occ := &models.Occurrence{
		BudgetID: budgetID,
		Kind:     kind,
		Name:     name,
		Date:     date,
		Amount:   amount,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(occ).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		_, err := s.summaries.Refresh(tx, budgetID, monthOfDate(date))
		return err
	})
	if err != nil {
		return nil, err
	}
	return occ, nil
}

// GetOccurrenceByID retrieves an occurrence by ID for a specific user.
func (s *occurrenceStore) GetOccurrenceByID(userID, occurrenceID uint) (*models.Occurrence, error) {
	return getOwnedOccurrence(s.db, userID, occurrenceID)
}

// UpdateOccurrence applies a user edit to exactly one occurrence and
// marks it overridden, detaching it from automatic regeneration. The
// definition is never touched. Moving the date leaves a tombstone on
// the old date so materialize does not refill the vacated slot.
func (s *occurrenceStore) UpdateOccurrence(userID, occurrenceID uint, patch OccurrencePatch) (*models.Occurrence, error) {
	occ, err := getOwnedOccurrence(s.db, userID, occurrenceID)
	if err != nil {
		return nil, err
	}

	if patch.Amount != nil && *patch.Amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must not be negative")
	}
	if patch.Date != nil {
		if _, err := calendar.ParseDate(*patch.Date); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, err.Error())
		}
		// An occurrence's effective date always stays inside the month
		// it was materialized for.
		if monthOfDate(*patch.Date) != monthOfDate(occ.Date) {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "date must stay within the occurrence's month")
		}
	}

	updates := map[string]interface{}{"override": true}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Amount != nil {
		updates["amount"] = *patch.Amount
	}
	movedFrom := ""
	if patch.Date != nil && *patch.Date != occ.Date {
		updates["date"] = *patch.Date
		movedFrom = occ.Date
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(occ).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		if movedFrom != "" && occ.Automated() {
			tomb := models.Tombstone{DefinitionID: *occ.DefinitionID, Date: movedFrom}
			if err := tx.Create(&tomb).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStore, err)
			}
		}
		_, err := s.summaries.Refresh(tx, occ.BudgetID, monthOfDate(occ.Date))
		return err
	})
	if err != nil {
		return nil, err
	}
	return occ, nil
}

// SetPaid toggles the paid status of an expense occurrence. Paid status
// is occurrence-local bookkeeping, not a divergence from the series, so
// it does not set the override flag.
func (s *occurrenceStore) SetPaid(userID, occurrenceID uint, paid bool) (*models.Occurrence, error) {
	occ, err := getOwnedOccurrence(s.db, userID, occurrenceID)
	if err != nil {
		return nil, err
	}
	if occ.Kind != models.KindExpense {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "paid status applies to expenses only")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(occ).Update("is_paid", paid).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		_, err := s.summaries.Refresh(tx, occ.BudgetID, monthOfDate(occ.Date))
		return err
	})
	if err != nil {
		return nil, err
	}
	return occ, nil
}

// UpdateSeries applies an edit at series scope. With PropagateCurrent it
// behaves like UpdateOccurrence on the triggering occurrence only. With
// PropagateAll it mutates the definition and drops the series' future
// (date >= from) non-overridden occurrences so the next materialize
// re-derives them from the new definition. The definition's start date
// advances to the cutoff so the edited schedule never projects into
// earlier months. Past occurrences and rows the user edited by hand are
// never touched.
func (s *occurrenceStore) UpdateSeries(userID, occurrenceID uint, patch SeriesPatch, propagate PropagationMode, from string) error {
	occ, err := getOwnedOccurrence(s.db, userID, occurrenceID)
	if err != nil {
		return err
	}
	if !occ.Automated() {
		return apperrors.WithMessage(apperrors.ErrInvariantViolation, "one-time items have no series")
	}
	if patch.Amount != nil && *patch.Amount < 0 {
		return apperrors.WithMessage(apperrors.ErrValidation, "amount must not be negative")
	}
	if patch.AnchorDay != nil && (*patch.AnchorDay < 1 || *patch.AnchorDay > 31) {
		return apperrors.WithMessage(apperrors.ErrValidation, "anchor day must be between 1 and 31")
	}
	if _, err := calendar.ParseDate(from); err != nil {
		return apperrors.WithMessage(apperrors.ErrValidation, err.Error())
	}

	switch propagate {
	case PropagateCurrent:
		occPatch := OccurrencePatch{Name: patch.Name, Amount: patch.Amount}
		if patch.AnchorDay != nil {
			moved := calendar.FormatDate(monthOfDate(occ.Date).Clamp(*patch.AnchorDay))
			occPatch.Date = &moved
		}
		_, err := s.UpdateOccurrence(userID, occurrenceID, occPatch)
		return err

	case PropagateAll:
		def := occ.Definition
		updates := make(map[string]interface{})
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.Amount != nil {
			updates["amount"] = *patch.Amount
		}
		if patch.AnchorDay != nil {
			updates["anchor_day"] = *patch.AnchorDay
		}
		if patch.Frequency != nil {
			updates["frequency"] = *patch.Frequency
		}
		if len(updates) == 0 {
			return nil
		}
		// The edited schedule starts at the cutoff. Without this, an
		// anchor-day or frequency change would project new dates into
		// months before the edit on their next materialize.
		if from > def.StartDate {
			updates["start_date"] = from
		}

		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(def).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStore, err)
			}

			stale := tx.Where("definition_id = ? AND date >= ? AND override = ?", def.ID, from, false)
			months, err := affectedMonths(tx, stale)
			if err != nil {
				return err
			}
			if err := tx.Where("definition_id = ? AND date >= ? AND override = ?", def.ID, from, false).
				Delete(&models.Occurrence{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStore, err)
			}

			return s.refreshMonths(tx, def.BudgetID, months)
		})

	default:
		return apperrors.WithMessage(apperrors.ErrValidation, "propagate must be 'current' or 'all'")
	}
}

// DeleteOccurrence implements the three-tier deletion semantics.
func (s *occurrenceStore) DeleteOccurrence(userID, occurrenceID uint, mode DeleteMode) error {
	occ, err := getOwnedOccurrence(s.db, userID, occurrenceID)
	if err != nil {
		return err
	}

	switch mode {
	case DeleteCurrent:
		return s.deleteCurrent(occ)
	case DeleteFuture:
		if !occ.Automated() {
			return apperrors.WithMessage(apperrors.ErrInvariantViolation, "one-time items have no series")
		}
		return s.deleteFuture(occ)
	case DeleteAll:
		if !occ.Automated() {
			return apperrors.WithMessage(apperrors.ErrInvariantViolation, "one-time items have no series")
		}
		return s.deleteAll(occ)
	default:
		return apperrors.WithMessage(apperrors.ErrValidation, "mode must be 'current', 'future' or 'all'")
	}
}

// deleteCurrent removes a single occurrence. For series rows it records
// a tombstone; without one, the next materialize would silently undo
// the delete.
func (s *occurrenceStore) deleteCurrent(occ *models.Occurrence) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(occ).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		if occ.Automated() {
			tomb := models.Tombstone{DefinitionID: *occ.DefinitionID, Date: occ.Date}
			if err := tx.Create(&tomb).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStore, err)
			}
		} else if occ.DefinitionID != nil {
			// A non-automated definition whose last occurrence is gone
			// has nothing left to reference it; retire it.
			var remaining int64
			if err := tx.Model(&models.Occurrence{}).
				Where("definition_id = ?", *occ.DefinitionID).Count(&remaining).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStore, err)
			}
			if remaining == 0 {
				if err := tx.Delete(&models.Definition{}, *occ.DefinitionID).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrStore, err)
				}
			}
		}
		_, err := s.summaries.Refresh(tx, occ.BudgetID, monthOfDate(occ.Date))
		return err
	})
}

// deleteFuture removes this and every later occurrence of the series
// and terminates the definition's validity window at this date, so
// materialize never regenerates them. Past occurrences are retained.
func (s *occurrenceStore) deleteFuture(occ *models.Occurrence) error {
	def := occ.Definition
	return s.db.Transaction(func(tx *gorm.DB) error {
		scope := tx.Where("definition_id = ? AND date >= ?", def.ID, occ.Date)
		months, err := affectedMonths(tx, scope)
		if err != nil {
			return err
		}
		if err := tx.Where("definition_id = ? AND date >= ?", def.ID, occ.Date).
			Delete(&models.Occurrence{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		if err := tx.Model(def).Update("end_date", occ.Date).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStore, err)
		}
		return s.refreshMonths(tx, def.BudgetID, months)
	})
}

// deleteAll removes every occurrence tied to the definition, clears its
// tombstones, and soft-deletes the definition itself.
func (s *occurrenceStore) deleteAll(occ *models.Occurrence) error {
	def := occ.Definition
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
		return s.refreshMonths(tx, def.BudgetID, months)
	})
}

// refreshMonths recomputes the summaries of every affected month within
// the same transaction as the mutation that invalidated them.
func (s *occurrenceStore) refreshMonths(tx *gorm.DB, budgetID uint, months []calendar.Month) error {
	for _, m := range months {
		if _, err := s.summaries.Refresh(tx, budgetID, m); err != nil {
			return err
		}
	}
	return nil
}

// affectedMonths returns the distinct months of the occurrences matched
// by scope, so their summaries can be recomputed after a bulk delete.
func affectedMonths(tx *gorm.DB, scope *gorm.DB) ([]calendar.Month, error) {
	var dates []string
	if err := scope.Model(&models.Occurrence{}).Pluck("date", &dates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	seen := make(map[string]bool)
	var months []calendar.Month
	for _, d := range dates {
		m := monthOfDate(d)
		if !seen[m.Key()] {
			seen[m.Key()] = true
			months = append(months, m)
		}
	}
	return months, nil
}

// monthOfDate derives the month of an ISO date by its key prefix.
func monthOfDate(date string) calendar.Month {
	m, err := calendar.ParseMonth(date[:len(calendar.KeyLayout)])
	if err != nil {
		// Dates are validated before persistence; an unparsable one here
		// is a programming error.
		panic(err)
	}
	return m
}
