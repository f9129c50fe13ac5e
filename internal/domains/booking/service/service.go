package service

import (
	"context"
	"errors"
	"spacebook/config"
	"spacebook/infras/otel"
	"spacebook/internal/domains/booking/model"
	"spacebook/internal/domains/booking/model/dto"
	"spacebook/internal/domains/booking/repository"
	locationModel "spacebook/internal/domains/location/model"
	locationRepo "spacebook/internal/domains/location/repository"
	"spacebook/internal/realtime"
	"spacebook/shared"
	"spacebook/shared/cache"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	gRepo "spacebook/shared/repository"
	"spacebook/shared/timezone"
	"spacebook/shared/validator"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheListBooking = model.CacheKeyList

	// an update re-resolves its slots when a concurrent writer moved the booking meanwhile
	maxSlotAttempts = 3
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (dto.BookingResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	List(ctx context.Context, req dto.ListBookingsRequest) (dto.ListBookingsResponse, error)
}

type serviceImpl struct {
	repo      repository.Booking
	locations locationRepo.Location
	capacity  CapacityValidator
	notifier  realtime.Notifier
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	slots     *slotLocks
}

func New(repo repository.Booking, locations locationRepo.Location, capacity CapacityValidator, notifier realtime.Notifier,
	cfg *config.Config, cache cache.RedisCache, otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:      repo,
		locations: locations,
		capacity:  capacity,
		notifier:  notifier,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		slots:     newSlotLocks(),
	}
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	unlock := s.slots.Lock(slotKey(req.Date, req.LocationID))
	defer unlock()

	if err = s.ensureLocation(ctx, req.LocationID); err != nil {
		return res, err
	}

	if err = s.ensureNoTeamBooking(ctx, req.TeamID, req.Date, req.LocationID, constant.Empty); err != nil {
		return res, err
	}

	admission, err := s.capacity.CheckCapacity(ctx, req.LocationID, req.Date, constant.Empty, req.PeopleCount)
	if err != nil {
		return res, err
	}

	if !admission.Admit {
		return res, failure.CapacityExceeded(admission.Available) // nolint:wrapcheck
	}

	booking, err := req.ToModel(user)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, writeFailure(err, booking)
	}

	res = dto.NewBookingResponse(booking)
	room := roomOf(booking)

	s.invalidate(ctx, room)
	s.emit(ctx, realtime.DataChanged{RoomKey: room, Type: realtime.ChangeCreated, Booking: res})

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	current, unlock, err := s.lockBooking(ctx, id, &req)
	if err != nil {
		return res, err
	}
	defer unlock()

	if current.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	next, err := req.Apply(current)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if next.LocationID != current.LocationID {
		if err = s.ensureLocation(ctx, next.LocationID); err != nil {
			return res, err
		}
	}

	if next.Day() != current.Day() || next.LocationID != current.LocationID || next.TeamID != current.TeamID {
		if err = s.ensureNoTeamBooking(ctx, next.TeamID, next.Day(), next.LocationID, id); err != nil {
			return res, err
		}
	}

	admission, err := s.capacity.CheckCapacity(ctx, next.LocationID, next.Day(), id, next.PeopleCount)
	if err != nil {
		return res, err
	}

	if !admission.Admit {
		return res, failure.CapacityExceeded(admission.Available) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), byID(id)); err != nil {
		log.Error().Err(err).Str("bookingId", id).Msg("failed to update booking")

		return res, writeFailure(err, next)
	}

	before := dto.NewBookingResponse(current)
	res = dto.NewBookingResponse(next)

	beforeRoom := roomOf(current)
	afterRoom := roomOf(next)

	s.invalidate(ctx, beforeRoom, afterRoom)
	s.emit(ctx, realtime.DataChanged{RoomKey: afterRoom, Type: realtime.ChangeUpdated, Booking: res, Before: before})

	if beforeRoom != afterRoom {
		s.emit(ctx, realtime.DataChanged{RoomKey: beforeRoom, Type: realtime.ChangeMovedOut, Booking: res, Before: before})
	}

	return res, nil
}

// Delete is idempotent. Deleting a missing booking succeeds without telling anyone.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, unlock, err := s.lockBooking(ctx, id, nil)
	if err != nil {
		return err
	}
	defer unlock()

	if current.ID == constant.Empty {
		log.Debug().Str("bookingId", id).Msg("booking already gone")

		return nil
	}

	if err = s.repo.Delete(ctx, byID(id)); err != nil {
		log.Error().Err(err).Str("bookingId", id).Msg("failed to delete booking")

		return failure.StorageFailure(err) // nolint:wrapcheck
	}

	room := roomOf(current)

	s.invalidate(ctx, room)
	s.emit(ctx, realtime.DataChanged{RoomKey: room, Type: realtime.ChangeDeleted, Booking: dto.NewBookingResponse(current)})

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Str("bookingId", id).Msg("failed to get booking")

		return res, failure.StorageFailure(err) // nolint:wrapcheck
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return dto.NewBookingResponse(booking), nil
}

// List returns one location's bookings for a month, the snapshot a client reloads after reconnecting.
func (s *serviceImpl) List(ctx context.Context, req dto.ListBookingsRequest) (res dto.ListBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	room := realtime.NewRoomKey(req.LocationID, req.Month)
	cacheKey := shared.BuildCacheKey(cacheListBooking, room.String())

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	first, last, err := timezone.MonthBounds(req.Month)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	filter := gDto.And(
		gDto.Where(model.TableName, model.FieldLocationID, gDto.FilterOperatorEq, req.LocationID),
		gDto.Filter{Field: model.FieldDate, ArgName: "date_from", Operator: gDto.FilterOperatorGreaterEq, Value: first, Table: model.TableName},
		gDto.Filter{Field: model.FieldDate, ArgName: "date_to", Operator: gDto.FilterOperatorLessEq, Value: last, Table: model.TableName},
	)

	params := gDto.QueryParams{SortBy: model.FieldDate, SortDir: gDto.SortDirAsc}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Str("roomKey", room.String()).Msg("failed to list bookings")

		return res, failure.StorageFailure(err) // nolint:wrapcheck
	}

	res.FromModels(req.LocationID, req.Month, bookings)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

// lockBooking reads the booking, locks the slots it occupies (plus the target slot of an
// update) and re-reads it under the lock. A zero booking with a no-op unlock means not found.
func (s *serviceImpl) lockBooking(ctx context.Context, id string, req *dto.UpdateBookingRequest) (model.Booking, func(), error) {
	primary := gRepo.WithPrimary(ctx)

	for range maxSlotAttempts {
		seen, err := s.repo.Get(primary, byID(id))
		if err != nil {
			log.Error().Err(err).Str("bookingId", id).Msg("failed to get booking")

			return model.Booking{}, nil, failure.StorageFailure(err) // nolint:wrapcheck
		}

		if seen.ID == constant.Empty {
			return seen, func() {}, nil
		}

		keys := []string{slotKey(seen.Day(), seen.LocationID)}

		if req != nil {
			next, err := req.Apply(seen)
			if err != nil {
				return model.Booking{}, nil, failure.BadRequest(err) // nolint:wrapcheck
			}

			keys = append(keys, slotKey(next.Day(), next.LocationID))
		}

		unlock := s.slots.Lock(keys...)

		current, err := s.repo.Get(primary, byID(id))
		if err != nil {
			unlock()
			log.Error().Err(err).Str("bookingId", id).Msg("failed to get booking")

			return model.Booking{}, nil, failure.StorageFailure(err) // nolint:wrapcheck
		}

		if current.ID == constant.Empty {
			unlock()

			return current, func() {}, nil
		}

		if current.Day() == seen.Day() && current.LocationID == seen.LocationID {
			return current, unlock, nil
		}

		unlock()
	}

	return model.Booking{}, nil, failure.Conflict("booking is being changed concurrently, retry") // nolint:wrapcheck
}

func (s *serviceImpl) ensureLocation(ctx context.Context, locationID string) error {
	exist, err := s.locations.Exist(gRepo.WithPrimary(ctx), shared.FilterByID(locationID, locationModel.FieldID, locationModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("locationId", locationID).Msg("failed to check location")

		return failure.StorageFailure(err) // nolint:wrapcheck
	}

	if !exist {
		return failure.InvalidLocation(locationID) // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) ensureNoTeamBooking(ctx context.Context, teamID, day, locationID, excludeID string) error {
	existing, err := s.repo.FindTeamBooking(ctx, teamID, day, locationID, excludeID)
	if err != nil {
		log.Error().Err(err).Str("teamId", teamID).Msg("failed to look up team booking")

		return failure.StorageFailure(err) // nolint:wrapcheck
	}

	if existing.ID != constant.Empty {
		return failure.DuplicateTeamBooking(existing.TeamName) // nolint:wrapcheck
	}

	return nil
}

// emit runs after a successful write, so a failed broadcast is logged rather than returned.
func (s *serviceImpl) emit(ctx context.Context, change realtime.DataChanged) {
	if err := s.notifier.Publish(ctx, change.RoomKey, realtime.EventDataChanged, change); err != nil {
		log.Error().Err(err).Str("roomKey", change.RoomKey.String()).Str("type", string(change.Type)).Msg("failed to notify room")
	}
}

// invalidate drops cached month listings before viewers are told to look again.
func (s *serviceImpl) invalidate(ctx context.Context, rooms ...realtime.RoomKey) {
	c := context.WithoutCancel(ctx)

	for _, room := range rooms {
		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheListBooking, room.String())); err != nil {
			log.Error().Err(err).Str("roomKey", room.String()).Msg("failed to delete bookings cache")
		}
	}
}

func roomOf(booking model.Booking) realtime.RoomKey {
	return realtime.NewRoomKey(booking.LocationID, booking.Month())
}

// writeFailure maps constraint violations the database caught after our own checks passed,
// e.g. another instance won the race or the location was deleted meanwhile.
func writeFailure(err error, booking model.Booking) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case constant.PqErrorCodeUniqueViolation:
			return failure.DuplicateTeamBooking(booking.TeamName) // nolint:wrapcheck
		case constant.PqErrorCodeFkViolation:
			return failure.InvalidLocation(booking.LocationID) // nolint:wrapcheck
		}
	}

	return failure.StorageFailure(err) // nolint:wrapcheck
}
