package service

import (
	"context"
	"fmt"

	"spacebook/config"
	"spacebook/infras/otel"
	bookingModel "spacebook/internal/domains/booking/model"
	bookingDto "spacebook/internal/domains/booking/model/dto"
	bookingRepo "spacebook/internal/domains/booking/repository"
	"spacebook/internal/domains/location/model"
	"spacebook/internal/domains/location/model/dto"
	"spacebook/internal/domains/location/repository"
	"spacebook/internal/realtime"
	"spacebook/shared"
	"spacebook/shared/cache"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetLocation    = "location:get"
	cacheGetAllLocation = "location:gets"
	cacheCountLocation  = "location:count"
)

type Location interface {
	Create(ctx context.Context, req dto.CreateLocationRequest) (dto.LocationResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetLocationsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.LocationResponse, error)
	Update(ctx context.Context, req dto.UpdateLocationRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo     repository.Location
	bookings bookingRepo.Booking
	notifier realtime.Notifier
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Location, bookings bookingRepo.Booking, notifier realtime.Notifier,
	cfg *config.Config, cache cache.RedisCache, otel otel.Otel,
) Location {
	return &serviceImpl{
		repo:     repo,
		bookings: bookings,
		notifier: notifier,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateLocationRequest) (res dto.LocationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".location.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	location, err := req.ToModel(user)
	if err != nil {
		return res, failure.InternalError(err) // nolint:wrapcheck
	}

	exist, err := s.repo.Exist(ctx, byID(location.ID))
	if err != nil {
		log.Error().Err(err).Msg("failed to check location id")

		return res, failure.StorageFailure(err) // nolint:wrapcheck
	}

	if exist {
		return res, failure.Conflict(fmt.Sprintf("location %q already exists", location.ID)) // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, location); err != nil {
		log.Error().Err(err).Msg("failed to create location")

		return res, failure.StorageFailure(err) // nolint:wrapcheck
	}

	res.FromModel(location)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllLocation)
		shared.InvalidateCaches(c, s.cache, cacheCountLocation)
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetLocationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".location.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllLocation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for locations")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get locations")

		return res, failure.StorageFailure(err) // nolint:wrapcheck
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save locations to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".location.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountLocation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count locations")

		return res, failure.StorageFailure(err) // nolint:wrapcheck
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save location count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.LocationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".location.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetLocation, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for location")

		return res, nil
	}

	location, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Str("locationId", id).Msg("failed to get location")

		return res, failure.StorageFailure(err) // nolint:wrapcheck
	}

	if location.ID == constant.Empty {
		return res, failure.NotFound("location not found") // nolint:wrapcheck
	}

	res.FromModel(location)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save location to cache")
		}
	}()

	return res, nil
}

// Update leaves existing bookings alone even when the new capacity is below what is booked.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateLocationRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".location.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	exist, err := s.repo.Exist(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Str("locationId", id).Msg("failed to check location existence")

		return failure.StorageFailure(err) // nolint:wrapcheck
	}

	if !exist {
		return failure.NotFound("location not found") // nolint:wrapcheck
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), byID(id)); err != nil {
		log.Error().Err(err).Str("locationId", id).Msg("failed to update location")

		return failure.StorageFailure(err) // nolint:wrapcheck
	}

	s.invalidate(ctx, id)

	return nil
}

// Delete removes the location and its bookings in one transaction, then tells every
// affected room that those bookings are gone.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".location.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exist, err := s.repo.Exist(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Str("locationId", id).Msg("failed to check location existence")

		return failure.StorageFailure(err) // nolint:wrapcheck
	}

	if !exist {
		return failure.NotFound("location not found") // nolint:wrapcheck
	}

	ofLocation := shared.FilterByField(bookingModel.FieldLocationID, id, bookingModel.TableName)

	removed, err := s.bookings.GetAll(ctx, gDto.QueryParams{SortBy: bookingModel.FieldDate, SortDir: gDto.SortDirAsc}, ofLocation)
	if err != nil {
		log.Error().Err(err).Str("locationId", id).Msg("failed to list bookings of location")

		return failure.StorageFailure(err) // nolint:wrapcheck
	}

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.bookings.DeleteTx(ctx, tx, ofLocation); err != nil {
			return fmt.Errorf("failed to delete bookings: %w", err)
		}

		return s.repo.DeleteTx(ctx, tx, byID(id)) //nolint:wrapcheck
	})
	if err != nil {
		log.Error().Err(err).Str("locationId", id).Msg("failed to delete location")

		return failure.StorageFailure(err) // nolint:wrapcheck
	}

	s.invalidate(ctx, id)

	for _, booking := range removed {
		room := realtime.NewRoomKey(booking.LocationID, booking.Month())
		change := realtime.DataChanged{
			RoomKey: room,
			Type:    realtime.ChangeDeleted,
			Booking: bookingDto.NewBookingResponse(booking),
		}

		if err := s.notifier.Publish(ctx, room, realtime.EventDataChanged, change); err != nil {
			log.Error().Err(err).Str("roomKey", room.String()).Msg("failed to notify room")
		}
	}

	log.Info().Str("locationId", id).Int("bookings", len(removed)).Msg("location deleted")

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	c := context.WithoutCancel(ctx)

	if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetLocation, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete location cache")
	}

	shared.InvalidateCaches(c, s.cache, cacheGetAllLocation)
	shared.InvalidateCaches(c, s.cache, cacheCountLocation)
	shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(bookingModel.CacheKeyList, id)+":")
}
