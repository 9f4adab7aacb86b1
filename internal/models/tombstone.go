package models

// Tombstone marks a (definition, date) pair whose single occurrence was
// deleted by the user. Materialize consults tombstones so a deleted
// occurrence is not silently regenerated on the next month view.
type Tombstone struct {
	Base
	DefinitionID uint   `gorm:"not null;index:idx_tombstone_def_date" json:"definition_id"`
	Date         string `gorm:"not null;index:idx_tombstone_def_date" json:"date"` // YYYY-MM-DD
}
