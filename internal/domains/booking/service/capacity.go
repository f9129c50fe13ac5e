package service

import (
	"context"
	"spacebook/infras/otel"
	"spacebook/internal/domains/booking/repository"
	locationModel "spacebook/internal/domains/location/model"
	locationRepo "spacebook/internal/domains/location/repository"
	"spacebook/shared"
	"spacebook/shared/constant"
	"spacebook/shared/failure"
	gRepo "spacebook/shared/repository"

	"github.com/rs/zerolog/log"
)

// Admission is the outcome of a capacity check. Available is reported whether or not the
// booking is admitted.
type Admission struct {
	Admit     bool
	Available int
	Capacity  int
}

type CapacityValidator interface {
	CheckCapacity(ctx context.Context, locationID, day, excludeBookingID string, proposed int) (Admission, error)
}

type capacityValidator struct {
	locations locationRepo.Location
	bookings  repository.Booking
	otel      otel.Otel
}

func NewCapacityValidator(locations locationRepo.Location, bookings repository.Booking, otel otel.Otel) CapacityValidator {
	return &capacityValidator{
		locations: locations,
		bookings:  bookings,
		otel:      otel,
	}
}

func (v *capacityValidator) CheckCapacity(ctx context.Context, locationID, day, excludeBookingID string, proposed int) (res Admission, err error) {
	ctx, scope := v.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckCapacity")
	defer scope.End()

	location, err := v.locations.Get(gRepo.WithPrimary(ctx), shared.FilterByID(locationID, locationModel.FieldID, locationModel.TableName),
		locationModel.FieldID, locationModel.FieldCapacity)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("locationId", locationID).Msg("failed to read location capacity")

		return res, failure.StorageFailure(err) // nolint:wrapcheck
	}

	if location.ID == constant.Empty {
		return res, failure.InvalidLocation(locationID) // nolint:wrapcheck
	}

	booked, err := v.bookings.SumPeople(ctx, locationID, day, excludeBookingID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("locationId", locationID).Str("date", day).Msg("failed to sum booked people")

		return res, failure.StorageFailure(err) // nolint:wrapcheck
	}

	res = Admission{
		Admit:     booked+proposed <= location.Capacity,
		Available: max(0, location.Capacity-booked),
		Capacity:  location.Capacity,
	}

	scope.SetAttributes(map[string]any{
		"capacity":  res.Capacity,
		"available": res.Available,
		"proposed":  proposed,
		"admit":     res.Admit,
	})

	return res, nil
}
