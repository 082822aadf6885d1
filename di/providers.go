package di

import (
	"tutorhub/internal/domains/booking/service"
	chatService "tutorhub/internal/domains/chat/service"
	notificationService "tutorhub/internal/domains/notification/service"
	performanceService "tutorhub/internal/domains/performance/service"
	"tutorhub/internal/jobs"
	"tutorhub/shared/event"
	"tutorhub/transport/ws"
)

// provideSink streams every event to kafka and to the websocket relay.
func provideSink(kafka *event.KafkaSink, relay *ws.Relay) event.Sink {
	return event.Multi{kafka, relay}
}

func provideNotifier(notification notificationService.Notification) service.Notifier {
	return notification
}

func provideChatter(chat chatService.Chat) service.Chatter {
	return chat
}

func provideAggregator(performance performanceService.Performance) service.Aggregator {
	return performance
}

func provideReminderSender(booking service.Booking) jobs.ReminderSender {
	return booking
}
