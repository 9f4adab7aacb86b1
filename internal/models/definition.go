package models

// Kind tags a definition or occurrence as income or expense. Both sides
// share one projection implementation; only is_paid differs (expenses).
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Frequency is the recurrence schedule of an automated definition.
type Frequency string

const (
	FrequencyWeekly      Frequency = "Weekly"
	FrequencyBiWeekly    Frequency = "Bi-Weekly"
	FrequencySemiMonthly Frequency = "Semi-Monthly"
	FrequencyMonthly     Frequency = "Monthly"
	FrequencyBiMonthly   Frequency = "Bi-Monthly"
)

// IncomeSource categorizes income definitions. Misc/One time income is
// not automated and never projects future occurrences.
type IncomeSource string

const (
	SourcePaycheck  IncomeSource = "Paycheck"
	SourceRecurring IncomeSource = "Recurring"
	SourceOneTime   IncomeSource = "Misc/One time"
)

// Definition is a recurring income or expense template. Occurrences are
// projected from it one month at a time; the definition itself is only
// mutated by series-wide edits and is soft-deleted, never physically
// removed, while occurrences still reference it.
type Definition struct {
	Base
	BudgetID uint   `gorm:"not null;index" json:"budget_id"`
	Kind     Kind   `gorm:"not null" json:"kind"`
	Name     string `gorm:"not null" json:"name"`
	Amount   int64  `gorm:"not null" json:"amount"` // cents

	// Source applies to income definitions only.
	Source      IncomeSource `json:"source,omitempty"`
	IsAutomated bool         `gorm:"default:true" json:"is_automated"`
	Frequency   Frequency    `gorm:"default:'Monthly'" json:"frequency"`

	// AnchorDay is the nominal day-of-month (1-31), clamped to the target
	// month's length at projection time.
	AnchorDay int `gorm:"not null" json:"anchor_day"`

	// StartDate anchors the series: weekly schedules step from it, and no
	// occurrence is ever projected into a month before it.
	StartDate string `gorm:"not null" json:"start_date"` // YYYY-MM-DD

	// EndDate is the exclusive end of the validity window, written when a
	// future-delete terminates the series. Nil means open-ended.
	EndDate *string `json:"end_date,omitempty"` // YYYY-MM-DD

	// Relationships
	Occurrences []Occurrence `gorm:"foreignKey:DefinitionID" json:"occurrences,omitempty"`
}
