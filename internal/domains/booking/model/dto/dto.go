package dto

import (
	"fmt"
	"spacebook/internal/domains/booking/model"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	Date        string `json:"date"        validate:"required,day"`
	LocationID  string `json:"locationId"  validate:"required,max=64"`
	TeamID      string `json:"teamId"      validate:"required,max=64"`
	TeamName    string `json:"teamName"    validate:"omitempty,max=100"`
	PeopleCount int    `json:"peopleCount" validate:"required,gte=1"`
	Notes       string `json:"notes"       validate:"omitempty,max=1000"`
}

// ToModel assigns a fresh time-ordered id.
func (c *CreateBookingRequest) ToModel(user string) (model.Booking, error) {
	day, err := time.Parse(constant.DayFormat, c.Date)
	if err != nil {
		return model.Booking{}, fmt.Errorf("invalid date: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Booking{}, fmt.Errorf("failed to generate booking id: %w", err)
	}

	booking := model.Booking{
		ID:          id.String(),
		Date:        day,
		LocationID:  c.LocationID,
		TeamID:      c.TeamID,
		TeamName:    c.TeamName,
		PeopleCount: c.PeopleCount,
		Notes:       c.Notes,
	}
	booking.Metadata.Stamp(user, timezone.Now())

	return booking, nil
}

// UpdateBookingRequest is a partial update. Only non-nil fields are written.
type UpdateBookingRequest struct {
	Date        *string `db:"date"         json:"date"        validate:"omitempty,day"`
	LocationID  *string `db:"location_id"  json:"locationId"  validate:"omitempty,min=1,max=64"`
	TeamID      *string `db:"team_id"      json:"teamId"      validate:"omitempty,min=1,max=64"`
	TeamName    *string `db:"team_name"    json:"teamName"    validate:"omitempty,max=100"`
	PeopleCount *int    `db:"people_count" json:"peopleCount" validate:"omitempty,gte=1"`
	Notes       *string `db:"notes"        json:"notes"       validate:"omitempty,max=1000"`
}

// Apply returns current with the supplied fields overlaid.
func (u *UpdateBookingRequest) Apply(current model.Booking) (model.Booking, error) {
	next := current

	if u.Date != nil {
		day, err := time.Parse(constant.DayFormat, *u.Date)
		if err != nil {
			return current, fmt.Errorf("invalid date: %w", err)
		}

		next.Date = day
	}

	if u.LocationID != nil {
		next.LocationID = *u.LocationID
	}

	if u.TeamID != nil {
		next.TeamID = *u.TeamID
	}

	if u.TeamName != nil {
		next.TeamName = *u.TeamName
	}

	if u.PeopleCount != nil {
		next.PeopleCount = *u.PeopleCount
	}

	if u.Notes != nil {
		next.Notes = *u.Notes
	}

	return next, nil
}

type BookingResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	LocationID  string `json:"locationId"`
	TeamID      string `json:"teamId"`
	TeamName    string `json:"teamName"`
	PeopleCount int    `json:"peopleCount"`
	Notes       string `json:"notes"`
	CreatedAt   string `json:"createdAt"`
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.Date = model.Day()
	r.LocationID = model.LocationID
	r.TeamID = model.TeamID
	r.TeamName = model.TeamName
	r.PeopleCount = model.PeopleCount
	r.Notes = model.Notes
	r.CreatedAt = gDto.Timestamp(model.CreatedAt)
}

func NewBookingResponse(model model.Booking) BookingResponse {
	var r BookingResponse
	r.FromModel(model)

	return r
}

type ListBookingsRequest struct {
	LocationID string `json:"locationId" validate:"required,max=64"`
	Month      string `json:"month"      validate:"required,yearmonth"`
}

type ListBookingsResponse struct {
	LocationID string            `json:"locationId"`
	Month      string            `json:"month"`
	Bookings   []BookingResponse `json:"bookings"`
}

func (r *ListBookingsResponse) FromModels(locationID, month string, models []model.Booking) {
	r.LocationID = locationID
	r.Month = month

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
