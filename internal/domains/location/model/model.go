package model

import "spacebook/shared/model"

const (
	TableName  = "locations"
	EntityName = "location"

	FieldID       = "id"
	FieldName     = "name"
	FieldAddress  = "address"
	FieldCapacity = "capacity"
	FieldFloors   = "floors"
)

// Location is an office whose capacity is the ceiling on people booked per day.
type Location struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Address  string `db:"address"`
	Capacity int    `db:"capacity"`
	Floors   int    `db:"floors"`
	model.Metadata
}
