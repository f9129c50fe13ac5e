package model

import "time"

type Metadata struct {
	CreatedAt  time.Time `db:"created_at"`
	ModifiedAt time.Time `db:"modified_at"`
	CreatedBy  string    `db:"created_by"`
	ModifiedBy string    `db:"modified_by"`
}

// Stamp fills both audit pairs for a fresh row.
func (m *Metadata) Stamp(actor string, now time.Time) {
	m.CreatedAt = now
	m.ModifiedAt = now
	m.CreatedBy = actor
	m.ModifiedBy = actor
}
