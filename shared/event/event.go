// Package event carries lifecycle notifications out of the domain services.
//
// Services publish through a Sink and never learn how events are delivered.
// Delivery is best effort: a failing sink is logged by the caller and does not
// roll back the state change that produced the event.
package event

import (
	"context"
	"errors"
	"time"
)

type Type string

const (
	BookingNew                Type = "booking:new"
	BookingConfirmed          Type = "booking:confirmed"
	BookingCancelled          Type = "booking:cancelled"
	BookingCompleted          Type = "booking:completed"
	BookingTimeChangeRequest  Type = "booking:timeChangeRequest"
	BookingTimeChangeResponse Type = "booking:timeChangeResponse"
	NotificationNew           Type = "notification:new"
	ChatMessage               Type = "chat:message"
)

type Event struct {
	Type       Type      `json:"type"`
	BookingID  string    `json:"bookingId,omitempty"`
	StudentID  string    `json:"studentId,omitempty"`
	TutorID    string    `json:"tutorId,omitempty"`
	Recipients []string  `json:"recipients"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error

	for _, sink := range m {
		if sink == nil {
			continue
		}

		if err := sink.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type nopSink struct{}

func (nopSink) Publish(context.Context, Event) error {
	return nil
}

func Nop() Sink {
	return nopSink{}
}
