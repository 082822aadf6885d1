package router

import (
	"tutorhub/internal/handlers/auth"
	"tutorhub/internal/handlers/booking"
	"tutorhub/internal/handlers/chat"
	"tutorhub/internal/handlers/notification"
	"tutorhub/internal/handlers/performance"
	"tutorhub/internal/handlers/review"
	"tutorhub/internal/handlers/user"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth         auth.Handler
	User         user.Handler
	Booking      booking.Handler
	Notification notification.Handler
	Chat         chat.Handler
	Performance  performance.Handler
	Review       review.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Notification.Router(routerGroup)
		r.DomainHandlers.Chat.Router(routerGroup)
		r.DomainHandlers.Performance.Router(routerGroup)
		r.DomainHandlers.Review.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
