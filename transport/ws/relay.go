package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"tutorhub/config"
	"tutorhub/infras/otel"
	"tutorhub/shared/constant"
	"tutorhub/shared/event"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Relay is the event.Sink that reaches websocket clients on every API instance.
type Relay struct {
	client  *goRedis.Client
	channel string
	hub     *Hub
	otel    otel.Otel
}

func NewRelay(cfg *config.Config, client *goRedis.Client, hub *Hub, otel otel.Otel) *Relay {
	return &Relay{
		client:  client,
		channel: cfg.Realtime.Channel,
		hub:     hub,
		otel:    otel,
	}
}

func (r *Relay) Publish(ctx context.Context, ev event.Event) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Relay.Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(ev.Recipients) == 0 {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", ev.Type, err)
	}

	if err = r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", ev.Type, err)
	}

	return nil
}

// Run delivers events received on the channel to the local hub until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, r.channel)

	defer func() {
		if err := sub.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close realtime subscription")
		}
	}()

	log.Info().Str("channel", r.channel).Msg("Listening for realtime events")

	messages := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			r.dispatch(msg.Payload)
		}
	}
}

func (r *Relay) dispatch(payload string) {
	var ev event.Event

	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Error().Err(err).Msg("failed to decode realtime event")

		return
	}

	r.hub.Deliver(ev)
}
