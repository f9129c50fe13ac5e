package dto

import (
	"spacebook/internal/domains/location/model"
	"spacebook/shared"
	gDto "spacebook/shared/dto"
	"spacebook/shared/timezone"
	"strings"

	"github.com/google/uuid"
)

var SortableFields = []string{model.FieldName, model.FieldCapacity, model.FieldFloors}

type CreateLocationRequest struct {
	ID       string `json:"id"       validate:"omitempty,max=64,excludesall=: /"`
	Name     string `json:"name"     validate:"required,max=100"`
	Address  string `json:"address"  validate:"omitempty,max=255"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Floors   int    `json:"floors"   validate:"gte=0"`
}

// ToModel keeps a caller supplied slug id (e.g. "jhb") and falls back to a UUIDv7.
func (c *CreateLocationRequest) ToModel(user string) (model.Location, error) {
	id := strings.TrimSpace(c.ID)
	if id == "" {
		generated, err := uuid.NewV7()
		if err != nil {
			return model.Location{}, err
		}

		id = generated.String()
	}

	location := model.Location{
		ID:       id,
		Name:     c.Name,
		Address:  c.Address,
		Capacity: c.Capacity,
		Floors:   c.Floors,
	}
	location.Metadata.Stamp(user, timezone.Now())

	return location, nil
}

type UpdateLocationRequest struct {
	Name     *string `db:"name"     json:"name"     validate:"omitempty,min=1,max=100"`
	Address  *string `db:"address"  json:"address"  validate:"omitempty,max=255"`
	Capacity *int    `db:"capacity" json:"capacity" validate:"omitempty,gte=0"`
	Floors   *int    `db:"floors"   json:"floors"   validate:"omitempty,gte=0"`
}

type LocationResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
	Floors   int    `json:"floors"`
	gDto.Metadata
}

func (r *LocationResponse) FromModel(model model.Location) {
	r.ID = model.ID
	r.Name = model.Name
	r.Address = model.Address
	r.Capacity = model.Capacity
	r.Floors = model.Floors
	r.Metadata.FromModel(model.Metadata)
}

type GetLocationsResponse struct {
	Locations []LocationResponse `json:"locations"`
	TotalPage int                `json:"totalPage"`
	TotalData int                `json:"totalData"`
}

func (r *GetLocationsResponse) FromModels(models []model.Location, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Locations = make([]LocationResponse, len(models))
	for i, mod := range models {
		r.Locations[i].FromModel(mod)
	}
}
