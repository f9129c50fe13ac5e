//go:build wireinject
// +build wireinject

package di

import (
	"spacebook/config"
	"spacebook/infras/jwt"
	"spacebook/infras/otel"
	"spacebook/infras/postgres"
	"spacebook/infras/redis"
	"spacebook/internal/realtime"
	"spacebook/permissions"
	"spacebook/shared/cache"
	"spacebook/transport/http"
	"spacebook/transport/http/middleware"
	"spacebook/transport/http/router"

	bookingRepository "spacebook/internal/domains/booking/repository"
	bookingService "spacebook/internal/domains/booking/service"
	locationRepository "spacebook/internal/domains/location/repository"
	locationService "spacebook/internal/domains/location/service"

	bookingHandler "spacebook/internal/handlers/booking"
	locationHandler "spacebook/internal/handlers/location"
	presenceHandler "spacebook/internal/handlers/presence"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var realtimeSet = wire.NewSet(
	ProvideHub,
	realtime.NewRegistry,
	wire.Bind(new(realtime.Notifier), new(*realtime.Hub)),
)

var locationDomain = wire.NewSet(
	locationRepository.New,
	locationService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.NewCapacityValidator,
	bookingService.New,
)

var domains = wire.NewSet(
	locationDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	locationHandler.New,
	bookingHandler.New,
	presenceHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		realtimeSet,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
