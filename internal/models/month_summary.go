package models

// MonthSummary is the cached aggregate for one budget month. It is
// recomputed wholesale from that month's occurrences whenever any of
// them changes, never incrementally patched, and never authoritative.
type MonthSummary struct {
	Base
	BudgetID      uint   `gorm:"not null;index:idx_summary_budget_month" json:"budget_id"`
	Month         string `gorm:"not null;index:idx_summary_budget_month" json:"month"` // YYYY-MM
	TotalIncome   int64  `gorm:"default:0" json:"total_income"`
	TotalExpenses int64  `gorm:"default:0" json:"total_expenses"`
	ExpensesPaid  int64  `gorm:"default:0" json:"expenses_paid"`
	TotalSavings  int64  `gorm:"default:0" json:"total_savings"`
	Balance       int64  `gorm:"default:0" json:"balance"`
}
