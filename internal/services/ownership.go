package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "paywise/internal/errors"
	"paywise/internal/models"
)

// getOwnedBudget loads a budget and verifies it belongs to the user.
func getOwnedBudget(db *gorm.DB, userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	return &budget, nil
}

// getOwnedDefinition loads a definition and verifies, through its
// budget, that it belongs to the user.
func getOwnedDefinition(db *gorm.DB, userID, definitionID uint) (*models.Definition, error) {
	var def models.Definition
	err := db.
		Joins("JOIN budgets ON budgets.id = definitions.budget_id AND budgets.user_id = ?", userID).
		Where("definitions.id = ?", definitionID).
		First(&def).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDefinitionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	return &def, nil
}

// getOwnedOccurrence loads an occurrence (with its definition, when it
// has one) and verifies ownership through its budget.
func getOwnedOccurrence(db *gorm.DB, userID, occurrenceID uint) (*models.Occurrence, error) {
	var occ models.Occurrence
	err := db.
		Preload("Definition").
		Joins("JOIN budgets ON budgets.id = occurrences.budget_id AND budgets.user_id = ?", userID).
		Where("occurrences.id = ?", occurrenceID).
		First(&occ).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOccurrenceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	return &occ, nil
}
