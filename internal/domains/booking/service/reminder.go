package service

import (
	"context"
	"fmt"
	"time"
	"tutorhub/internal/domains/booking/model"
	notificationModel "tutorhub/internal/domains/notification/model"
	notificationDto "tutorhub/internal/domains/notification/model/dto"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"

	"github.com/rs/zerolog/log"
)

const reminderSlack = time.Minute

// SendReminders notifies both participants of confirmed sessions starting in one
// of the reminder windows. Each window fires at most once per booking.
func (s *serviceImpl) SendReminders(ctx context.Context, now time.Time) (sent int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SendReminders")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	for _, window := range model.ReminderWindows {
		from := now.Add(window.Before)

		filter := gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []any{
				gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: model.StatusConfirmed, Table: model.TableName},
				gDto.Filter{ArgName: "window_start", Field: model.FieldStartTime, Operator: gDto.FilterOperatorGreaterEq, Value: from, Table: model.TableName},
				gDto.Filter{ArgName: "window_end", Field: model.FieldStartTime, Operator: gDto.FilterOperatorLess, Value: from.Add(reminderSlack), Table: model.TableName},
				gDto.Filter{ArgName: "reminder_sent", Field: window.Field, Operator: gDto.FilterOperatorEq, Value: false, Table: model.TableName},
			},
		}

		bookings, err := s.repo.GetAll(ctx, gDto.QueryParams{}, filter)
		if err != nil {
			log.Error().Err(err).Str("window", window.Before.String()).Msg("failed to get bookings due for reminder")

			return sent, fmt.Errorf("failed to get bookings due for reminder: %w", err)
		}

		for _, booking := range bookings {
			claimed, err := s.claimReminder(ctx, booking, window, now)
			if err != nil {
				log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to claim reminder")

				continue
			}

			if !claimed {
				continue
			}

			sent++

			s.dispatch(ctx, booking.ID, s.reminderEffects(booking, window)...)
		}
	}

	if sent > 0 {
		log.Info().Int("sent", sent).Msg("session reminders sent")
	}

	return sent, nil
}

// claimReminder flips the window flag; only the caller that flips it sends the reminder.
func (s *serviceImpl) claimReminder(ctx context.Context, booking model.Booking, window model.ReminderWindow, now time.Time) (bool, error) {
	fields := modified(map[string]any{window.Field: true}, now, constant.ContextGuest)

	if booking.NeedsVideoLink() {
		fields[model.FieldVideoLink] = s.videoLink(booking)
	}

	filter := model.FilterByID(booking.ID)
	filter.Filters = append(filter.Filters, gDto.Filter{
		ArgName:  "unclaimed",
		Field:    window.Field,
		Operator: gDto.FilterOperatorEq,
		Value:    false,
		Table:    model.TableName,
	})

	affected, err := s.repo.UpdateAffected(ctx, fields, filter)
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder: %w", err)
	}

	if affected > 0 {
		s.invalidate(ctx, booking.ID)
	}

	return affected > 0, nil
}

func (s *serviceImpl) reminderEffects(booking model.Booking, window model.ReminderWindow) []effect {
	minutes := int(window.Before.Minutes())
	title := fmt.Sprintf("Your %s session starts in %d minutes", subjectOrDefault(booking.Subject), minutes)

	if booking.Platform.SelfHosted() {
		link := booking.VideoLink
		if link == "" {
			link = s.videoLink(booking)
		}

		effects := make([]effect, 0, 2)
		for _, userID := range []string{booking.StudentID, booking.TutorID} {
			effects = append(effects, s.notifyEffect(notificationDto.NotifyRequest{
				UserID:    userID,
				Type:      notificationModel.TypeLectureLink,
				Title:     title,
				Message:   "Join the session: " + link,
				Link:      link,
				BookingID: booking.ID,
			}))
		}

		return effects
	}

	return []effect{
		s.notifyEffect(notificationDto.NotifyRequest{
			UserID:    booking.StudentID,
			Type:      notificationModel.TypeSessionReminder,
			Title:     title,
			Message:   fmt.Sprintf("Your tutor will share the %s link before the session", booking.Platform),
			BookingID: booking.ID,
		}),
		s.notifyEffect(notificationDto.NotifyRequest{
			UserID:    booking.TutorID,
			Type:      notificationModel.TypeSessionReminder,
			Title:     title,
			Message:   fmt.Sprintf("Please share the %s meeting link with your student", booking.Platform),
			BookingID: booking.ID,
		}),
	}
}
