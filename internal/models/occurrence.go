package models

// Occurrence is one concrete dated event inside a month, materialized
// from a definition or created directly as a one-time item. Its date
// always falls within the month it was materialized for. A row with
// Override=false is fully re-derivable from its definition; once a user
// edits it, Override is set and the row is frozen until deleted.
type Occurrence struct {
	Base
	DefinitionID *uint  `gorm:"index" json:"definition_id,omitempty"` // nil for detached one-time items
	BudgetID     uint   `gorm:"not null;index" json:"budget_id"`
	Kind         Kind   `gorm:"not null" json:"kind"`
	Name         string `gorm:"not null" json:"name"`
	Date         string `gorm:"not null;index" json:"date"` // YYYY-MM-DD
	Amount       int64  `gorm:"not null" json:"amount"`     // cents
	IsPaid       bool   `gorm:"default:false" json:"is_paid"` // expenses only
	Override     bool   `gorm:"default:false" json:"override"`

	// Relationships
	Definition *Definition `gorm:"foreignKey:DefinitionID" json:"definition,omitempty"`
}

// Automated reports whether the occurrence belongs to an automated
// series. Detached one-time items and occurrences of non-automated
// definitions have no series, so series-wide operations are rejected
// on them. Requires the Definition relation to be loaded.
func (o *Occurrence) Automated() bool {
	return o.DefinitionID != nil && o.Definition != nil && o.Definition.IsAutomated
}
