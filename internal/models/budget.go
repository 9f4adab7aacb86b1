package models

// AmountType distinguishes percentage allocations from flat amounts.
type AmountType string

const (
	AmountTypePercent AmountType = "percent"
	AmountTypeFlat    AmountType = "flat"
)

// Budget holds a user's budgeting settings: pay schedule, balance
// threshold, and automatic savings allocation. It owns every definition
// and occurrence created under it.
type Budget struct {
	Base
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`

	// Pay schedule, seeded from the initial setup flow.
	FirstPayDate string    `json:"first_pay_date"` // YYYY-MM-DD
	PayFrequency Frequency `gorm:"default:'Bi-Weekly'" json:"pay_frequency"`
	PayAmount    int64     `json:"pay_amount"` // cents

	// Minimum net balance threshold for bill allocation.
	ThresholdEnabled bool  `gorm:"default:false" json:"threshold_enabled"`
	ThresholdAmount  int64 `json:"threshold_amount"` // cents

	// Automatic savings allocation applied to each month's income.
	SavingsEnabled bool       `gorm:"default:false" json:"savings_enabled"`
	SavingsType    AmountType `gorm:"default:'percent'" json:"savings_type"`
	SavingsAmount  int64      `json:"savings_amount"` // percent, or cents when flat

	// Relationships
	Definitions []Definition   `gorm:"foreignKey:BudgetID" json:"definitions,omitempty"`
	Occurrences []Occurrence   `gorm:"foreignKey:BudgetID" json:"occurrences,omitempty"`
	Summaries   []MonthSummary `gorm:"foreignKey:BudgetID" json:"summaries,omitempty"`
}
