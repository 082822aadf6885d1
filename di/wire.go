//go:build wireinject
// +build wireinject

package di

import (
	"tutorhub/config"
	"tutorhub/infras/jwt"
	"tutorhub/infras/kafka"
	"tutorhub/infras/otel"
	"tutorhub/infras/postgres"
	"tutorhub/infras/redis"
	"tutorhub/internal/jobs"
	"tutorhub/shared/cache"
	"tutorhub/shared/event"
	"tutorhub/shared/timezone"
	"tutorhub/transport/http"
	"tutorhub/transport/http/middleware"
	"tutorhub/transport/http/router"
	"tutorhub/transport/ws"

	"github.com/google/wire"

	authService "tutorhub/internal/domains/auth/service"
	bookingRepository "tutorhub/internal/domains/booking/repository"
	bookingService "tutorhub/internal/domains/booking/service"
	chatRepository "tutorhub/internal/domains/chat/repository"
	chatService "tutorhub/internal/domains/chat/service"
	notificationRepository "tutorhub/internal/domains/notification/repository"
	notificationService "tutorhub/internal/domains/notification/service"
	performanceRepository "tutorhub/internal/domains/performance/repository"
	performanceService "tutorhub/internal/domains/performance/service"
	reviewRepository "tutorhub/internal/domains/review/repository"
	reviewService "tutorhub/internal/domains/review/service"
	userRepository "tutorhub/internal/domains/user/repository"
	userService "tutorhub/internal/domains/user/service"
	authHandler "tutorhub/internal/handlers/auth"
	bookingHandler "tutorhub/internal/handlers/booking"
	chatHandler "tutorhub/internal/handlers/chat"
	notificationHandler "tutorhub/internal/handlers/notification"
	performanceHandler "tutorhub/internal/handlers/performance"
	reviewHandler "tutorhub/internal/handlers/review"
	userHandler "tutorhub/internal/handlers/user"
	"tutorhub/permissions"
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
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	timezone.NewClock,
	event.NewKafkaSink,
	provideSink,
)

var realtime = wire.NewSet(
	ws.NewHub,
	ws.NewRelay,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var notificationDomain = wire.NewSet(
	notificationRepository.New,
	notificationService.New,
	provideNotifier,
)

var chatDomain = wire.NewSet(
	chatRepository.NewChat,
	chatRepository.NewMessage,
	chatService.New,
	provideChatter,
)

var performanceDomain = wire.NewSet(
	performanceRepository.New,
	performanceService.New,
	provideAggregator,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var reviewDomain = wire.NewSet(
	reviewRepository.New,
	reviewService.New,
)

var domains = wire.NewSet(
	userDomain,
	authDomain,
	notificationDomain,
	chatDomain,
	performanceDomain,
	bookingDomain,
	reviewDomain,
)

var backgroundJobs = wire.NewSet(
	provideReminderSender,
	jobs.NewReminder,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	bookingHandler.New,
	notificationHandler.New,
	chatHandler.New,
	performanceHandler.New,
	reviewHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		realtime,
		domains,
		backgroundJobs,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
