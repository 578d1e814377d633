// Package model provides the base types embedded by every persisted record.
package model

// Model is embedded by every persisted record. It carries the native
// identifier shared by all record kinds.
type Model struct {
	ID int64 `json:"id" gorm:"primaryKey"`
}

// RecordID returns the native identifier of the record.
func (m Model) RecordID() int64 {
	return m.ID
}

// Scrub zeroes the fields assigned by the datastore. This is typically used
// when comparing records in tests.
func (m *Model) Scrub() {
	m.ID = 0
}
