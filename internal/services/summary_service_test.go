package services

import (
	"testing"
	"time"

	"paywise/internal/models"
	"paywise/internal/pagination"
	"paywise/internal/testutil"
)

func TestSummarize(t *testing.T) {
	t.Run("computes totals and balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		testutil.CreateTestOneTimeOccurrence(t, db, budget.ID, models.KindIncome, "2025-03-01", 300000)
		testutil.CreateTestOneTimeOccurrence(t, db, budget.ID, models.KindExpense, "2025-03-05", 120000)
		paid := testutil.CreateTestOneTimeOccurrence(t, db, budget.ID, models.KindExpense, "2025-03-10", 80000)
		if err := db.Model(paid).Update("is_paid", true).Error; err != nil {
			t.Fatalf("failed to mark occurrence paid: %v", err)
		}
		// A neighboring month must not leak into the totals.
		testutil.CreateTestOneTimeOccurrence(t, db, budget.ID, models.KindExpense, "2025-04-01", 999999)

		service := NewSummaryService(db)

		summary, err := service.Summarize(user.ID, budget.ID, testMonth(2025, time.March))
		testutil.AssertNoError(t, err)

		if summary.TotalIncome != 300000 {
			t.Errorf("expected total income 300000, got %d", summary.TotalIncome)
		}
		if summary.TotalExpenses != 200000 {
			t.Errorf("expected total expenses 200000, got %d", summary.TotalExpenses)
		}
		if summary.ExpensesPaid != 80000 {
			t.Errorf("expected expenses paid 80000, got %d", summary.ExpensesPaid)
		}
		if summary.Balance != 100000 {
			t.Errorf("expected balance 100000, got %d", summary.Balance)
		}
	})

	t.Run("applies percentage savings to income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		if err := db.Model(budget).Updates(map[string]interface{}{
			"savings_enabled": true,
			"savings_type":    models.AmountTypePercent,
			"savings_amount":  10,
		}).Error; err != nil {
			t.Fatalf("failed to enable savings: %v", err)
		}
		testutil.CreateTestOneTimeOccurrence(t, db, budget.ID, models.KindIncome, "2025-03-01", 250000)

		service := NewSummaryService(db)

		summary, err := service.Summarize(user.ID, budget.ID, testMonth(2025, time.March))
		testutil.AssertNoError(t, err)

		if summary.TotalSavings != 25000 {
			t.Errorf("expected savings 25000, got %d", summary.TotalSavings)
		}
	})

	t.Run("applies flat savings regardless of income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		if err := db.Model(budget).Updates(map[string]interface{}{
			"savings_enabled": true,
			"savings_type":    models.AmountTypeFlat,
			"savings_amount":  15000,
		}).Error; err != nil {
			t.Fatalf("failed to enable savings: %v", err)
		}

		service := NewSummaryService(db)

		summary, err := service.Summarize(user.ID, budget.ID, testMonth(2025, time.March))
		testutil.AssertNoError(t, err)

		if summary.TotalSavings != 15000 {
			t.Errorf("expected savings 15000, got %d", summary.TotalSavings)
		}
	})

	t.Run("empty month yields an all-zero summary", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		service := NewSummaryService(db)

		summary, err := service.Summarize(user.ID, budget.ID, testMonth(2025, time.June))
		testutil.AssertNoError(t, err)

		if summary.TotalIncome != 0 || summary.TotalExpenses != 0 || summary.Balance != 0 {
			t.Errorf("expected all-zero summary, got %+v", summary)
		}
	})

	t.Run("recomputing updates the cached row in place", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		service := NewSummaryService(db)

		_, err := service.Summarize(user.ID, budget.ID, testMonth(2025, time.March))
		testutil.AssertNoError(t, err)

		testutil.CreateTestOneTimeOccurrence(t, db, budget.ID, models.KindIncome, "2025-03-01", 50000)

		summary, err := service.Summarize(user.ID, budget.ID, testMonth(2025, time.March))
		testutil.AssertNoError(t, err)
		if summary.TotalIncome != 50000 {
			t.Errorf("expected recomputed income 50000, got %d", summary.TotalIncome)
		}

		var count int64
		if err := db.Model(&models.MonthSummary{}).
			Where("budget_id = ? AND month = ?", budget.ID, "2025-03").Count(&count).Error; err != nil {
			t.Fatalf("failed to count summaries: %v", err)
		}
		if count != 1 {
			t.Errorf("expected a single summary row, got %d", count)
		}
	})
}

func TestGetSummary(t *testing.T) {
	t.Run("missing month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		service := NewSummaryService(db)

		_, err := service.GetSummary(user.ID, budget.ID, testMonth(2030, time.January))
		testutil.AssertAppError(t, err, "SUMMARY_NOT_FOUND")
	})

	t.Run("foreign budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)

		service := NewSummaryService(db)

		_, err := service.GetSummary(intruder.ID, budget.ID, testMonth(2025, time.March))
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestGetBudgetSummaries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID)

	service := NewSummaryService(db)

	for _, m := range []time.Month{time.January, time.February, time.March} {
		_, err := service.Summarize(user.ID, budget.ID, testMonth(2025, m))
		testutil.AssertNoError(t, err)
	}

	page, err := service.GetBudgetSummaries(user.ID, budget.ID, pagination.PageRequest{Page: 1, PageSize: 10})
	testutil.AssertNoError(t, err)

	if page.TotalItems != 3 {
		t.Fatalf("expected 3 summaries, got %d", page.TotalItems)
	}
	if page.Data[0].Month != "2025-03" {
		t.Errorf("expected newest month first, got %s", page.Data[0].Month)
	}
}
