package model

import (
	"spacebook/shared/constant"
	"spacebook/shared/model"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldDate        = "date"
	FieldLocationID  = "location_id"
	FieldTeamID      = "team_id"
	FieldTeamName    = "team_name"
	FieldPeopleCount = "people_count"
	FieldNotes       = "notes"

	// CacheKeyList prefixes cached month listings, one per room.
	CacheKeyList = "booking:list"
)

// Booking reserves PeopleCount places for one team at one location on one calendar day.
type Booking struct {
	ID          string    `db:"id"`
	Date        time.Time `db:"date"`
	LocationID  string    `db:"location_id"`
	TeamID      string    `db:"team_id"`
	TeamName    string    `db:"team_name"`
	PeopleCount int       `db:"people_count"`
	Notes       string    `db:"notes"`
	model.Metadata
}

// Day renders Date as YYYY-MM-DD.
func (b Booking) Day() string {
	if b.Date.IsZero() {
		return ""
	}

	return b.Date.Format(constant.DayFormat)
}

// Month renders Date as YYYY-MM, the month part of the booking's room.
func (b Booking) Month() string {
	return b.Date.Format(constant.YearMonthFormat)
}
