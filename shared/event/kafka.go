package event

import (
	"context"
	"fmt"
	"tutorhub/config"
	"tutorhub/infras/kafka"

	"github.com/rs/zerolog/log"
)

const headerEventType = "event-type"

// KafkaSink appends events to the booking events topic keyed by booking id.
type KafkaSink struct {
	client kafka.Client
	topic  string
	enable bool
}

func NewKafkaSink(cfg *config.Config, client kafka.Client) *KafkaSink {
	enable := len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topics.BookingEvents != ""
	if !enable {
		log.Warn().Msg("Kafka brokers not configured, booking events will not be streamed")
	}

	return &KafkaSink{
		client: client,
		topic:  cfg.Kafka.Topics.BookingEvents,
		enable: enable,
	}
}

func (k *KafkaSink) Publish(ctx context.Context, ev Event) error {
	if !k.enable {
		return nil
	}

	key := ev.BookingID
	if key == "" {
		key = string(ev.Type)
	}

	if err := k.client.SendMessages(ctx, k.topic, kafka.Message{
		Key:     key,
		Value:   ev,
		Headers: map[string]string{headerEventType: string(ev.Type)},
	}); err != nil {
		return fmt.Errorf("failed to stream event %s: %w", ev.Type, err)
	}

	return nil
}
