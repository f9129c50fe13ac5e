package router

import (
	"spacebook/internal/handlers/booking"
	"spacebook/internal/handlers/location"
	"spacebook/internal/handlers/presence"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Location location.Handler
	Booking  booking.Handler
	Presence presence.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Location.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Presence.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
