package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"paywise/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBudget creates a budget with a bi-weekly pay schedule and no
// savings or threshold settings.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID uint) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Budget %d", nextID()),
		FirstPayDate: "2025-01-03",
		PayFrequency: models.FrequencyBiWeekly,
		PayAmount:    200000, // $2000.00
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestDefinition creates an automated monthly expense definition
// anchored on the 15th, starting January 2025.
func CreateTestDefinition(t *testing.T, db *gorm.DB, budgetID uint) *models.Definition {
	t.Helper()
	return CreateTestDefinitionWith(t, db, budgetID, models.KindExpense, models.FrequencyMonthly, 15, "2025-01-15")
}

// CreateTestDefinitionWith creates an automated definition with the given
// kind, frequency, anchor day, and start date.
func CreateTestDefinitionWith(t *testing.T, db *gorm.DB, budgetID uint, kind models.Kind, frequency models.Frequency, anchorDay int, startDate string) *models.Definition {
	t.Helper()

	def := &models.Definition{
		BudgetID:    budgetID,
		Kind:        kind,
		Name:        fmt.Sprintf("Test Definition %d", nextID()),
		Amount:      50000, // $500.00
		IsAutomated: true,
		Frequency:   frequency,
		AnchorDay:   anchorDay,
		StartDate:   startDate,
	}
	if kind == models.KindIncome {
		def.Source = models.SourceRecurring
	}
	if err := db.Create(def).Error; err != nil {
		t.Fatalf("failed to create test definition: %v", err)
	}
	return def
}

// CreateTestOccurrence creates an occurrence tied to a definition.
func CreateTestOccurrence(t *testing.T, db *gorm.DB, def *models.Definition, date string) *models.Occurrence {
	t.Helper()

	occ := &models.Occurrence{
		DefinitionID: &def.ID,
		BudgetID:     def.BudgetID,
		Kind:         def.Kind,
		Name:         def.Name,
		Date:         date,
		Amount:       def.Amount,
	}
	if err := db.Create(occ).Error; err != nil {
		t.Fatalf("failed to create test occurrence: %v", err)
	}
	return occ
}

// CreateTestOneTimeOccurrence creates a detached occurrence that belongs
// to no definition.
func CreateTestOneTimeOccurrence(t *testing.T, db *gorm.DB, budgetID uint, kind models.Kind, date string, amount int64) *models.Occurrence {
	t.Helper()

	occ := &models.Occurrence{
		BudgetID: budgetID,
		Kind:     kind,
		Name:     fmt.Sprintf("Test One-Time %d", nextID()),
		Date:     date,
		Amount:   amount,
	}
	if err := db.Create(occ).Error; err != nil {
		t.Fatalf("failed to create test one-time occurrence: %v", err)
	}
	return occ
}
