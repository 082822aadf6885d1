package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"tutorhub/internal/domains/booking/model"
	"tutorhub/internal/domains/booking/model/dto"
	chatModel "tutorhub/internal/domains/chat/model"
	notificationDto "tutorhub/internal/domains/notification/model/dto"
	"tutorhub/shared/event"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const defaultSubject = "General"

// effect is a best-effort follow-up of a committed state change.
type effect struct {
	name string
	run  func(ctx context.Context) error
}

// dispatch runs effects in order after the write has been committed.
// Failures are logged per effect and never reach the caller.
func (s *serviceImpl) dispatch(ctx context.Context, bookingID string, effects ...effect) {
	ctx = context.WithoutCancel(ctx)

	for _, e := range effects {
		if e.run == nil {
			continue
		}

		if err := e.run(ctx); err != nil {
			log.Error().Err(err).Str("booking_id", bookingID).Str("effect", e.name).Msg("failed to dispatch booking side effect")
		}
	}
}

func (s *serviceImpl) notifyEffect(req notificationDto.NotifyRequest) effect {
	return effect{
		name: "notify:" + string(req.Type),
		run: func(ctx context.Context) error {
			if s.notifier == nil {
				return nil
			}

			return s.notifier.Notify(ctx, req) //nolint:wrapcheck
		},
	}
}

func (s *serviceImpl) chatEffect(booking model.Booking, senderID, text string) effect {
	return effect{
		name: "chat",
		run: func(ctx context.Context) error {
			if s.chatter == nil {
				return nil
			}

			return s.chatter.AppendMessage(ctx, booking.StudentID, booking.TutorID, senderID, text) //nolint:wrapcheck
		},
	}
}

func (s *serviceImpl) publishEffect(typ event.Type, booking model.Booking, payload any, recipients ...string) effect {
	return effect{
		name: "publish:" + string(typ),
		run: func(ctx context.Context) error {
			if s.sink == nil {
				return nil
			}

			return s.sink.Publish(ctx, event.Event{ //nolint:wrapcheck
				Type:       typ,
				BookingID:  booking.ID,
				StudentID:  booking.StudentID,
				TutorID:    booking.TutorID,
				Recipients: recipients,
				Payload:    payload,
				OccurredAt: s.clock.Now(),
			})
		},
	}
}

func (s *serviceImpl) completionEffect(booking model.Booking) effect {
	return effect{
		name: "performance:completion",
		run: func(ctx context.Context) error {
			if s.aggregator == nil {
				return nil
			}

			return s.aggregator.RecordCompletion(ctx, booking.StudentID, booking.TutorID, subjectOrDefault(booking.Subject), booking.Hours()) //nolint:wrapcheck
		},
	}
}

func (s *serviceImpl) ratingEffect(booking model.Booking, rating int) effect {
	return effect{
		name: "performance:rating",
		run: func(ctx context.Context) error {
			if s.aggregator == nil {
				return nil
			}

			return s.aggregator.RecordRating(ctx, booking.TutorID, subjectOrDefault(booking.Subject), rating) //nolint:wrapcheck
		},
	}
}

// TimeChangeResponsePayload is the event payload for a resolved time change.
type TimeChangeResponsePayload struct {
	Accepted bool                `json:"accepted"`
	Booking  dto.BookingResponse `json:"booking"`
}

func subjectOrDefault(subject string) string {
	if strings.TrimSpace(subject) == "" {
		return defaultSubject
	}

	return subject
}

func formatTime(t time.Time) string {
	return t.Format("Mon, 02 Jan 2006 15:04 MST")
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	switch {
	case hours == 0:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes == 0:
		return fmt.Sprintf("%d hour(s)", hours)
	default:
		return fmt.Sprintf("%d hour(s) %d minutes", hours, minutes)
	}
}

func bookingRequestMessage(booking model.Booking) string {
	var b strings.Builder

	b.WriteString("New booking request\n")
	fmt.Fprintf(&b, "Subject: %s\n", subjectOrDefault(booking.Subject))
	fmt.Fprintf(&b, "Duration: %s\n", formatDuration(booking.Duration()))
	fmt.Fprintf(&b, "Platform: %s\n", booking.Platform)
	fmt.Fprintf(&b, "Start: %s\n", formatTime(booking.StartTime))
	fmt.Fprintf(&b, "End: %s", formatTime(booking.EndTime))

	if msg := strings.TrimSpace(booking.Message); msg != "" {
		const label = "\nMessage: "

		room := chatModel.MaxMessageLength - utf8.RuneCountInString(b.String()) - utf8.RuneCountInString(label)
		if room > 0 {
			b.WriteString(label)
			b.WriteString(truncate(msg, room))
		}
	}

	return b.String()
}

// truncate shortens s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)

	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

func bookingConfirmedMessage(booking model.Booking) string {
	msg := fmt.Sprintf("Booking confirmed for %s on %s", subjectOrDefault(booking.Subject), formatTime(booking.StartTime))
	if booking.VideoLink != "" {
		msg += "\nJoin the session: " + booking.VideoLink
	}

	return msg
}
