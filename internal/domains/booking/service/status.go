package service

import (
	"context"
	"fmt"
	"tutorhub/internal/domains/booking/model"
	"tutorhub/internal/domains/booking/model/dto"
	notificationModel "tutorhub/internal/domains/notification/model"
	notificationDto "tutorhub/internal/domains/notification/model/dto"
	"tutorhub/shared/constant"
	"tutorhub/shared/event"
	"tutorhub/shared/failure"

	"github.com/rs/zerolog/log"
)

func (s *serviceImpl) UpdateStatus(ctx context.Context, id string, status string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, err := callerID(ctx)
	if err != nil {
		return res, err
	}

	next := model.Status(status)
	if !next.Valid() {
		return res, failure.BadRequestFromString("invalid status " + status)
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if !booking.IsParticipant(caller) {
		return res, failure.Forbidden("you are not a participant of this booking")
	}

	if !booking.Status.CanTransitionTo(next) {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid status transition from %s to %s", booking.Status, next))
	}

	if (next == model.StatusConfirmed || next == model.StatusCompleted) && caller != booking.TutorID {
		return res, failure.Forbidden("only the tutor can " + verb(next) + " this booking")
	}

	now := s.clock.Now()
	fields := modified(map[string]any{model.FieldStatus: next}, now, caller)

	if next == model.StatusConfirmed && booking.NeedsVideoLink() {
		booking.VideoLink = s.videoLink(booking)
		fields[model.FieldVideoLink] = booking.VideoLink
	}

	affected, err := s.repo.UpdateAffected(ctx, fields, model.FilterByIDAndStatus(booking.ID, booking.Status))
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to update booking status")

		return res, fmt.Errorf("failed to update booking status: %w", err)
	}

	if affected == 0 {
		return res, errConcurrentModification
	}

	previous := booking.Status
	booking.Status = next
	booking.ModifiedAt = now
	booking.ModifiedBy = caller

	log.Info().Str("booking_id", booking.ID).Str("from", string(previous)).Str("to", string(next)).Msg("booking status changed")

	s.invalidate(ctx, booking.ID)

	res, err = s.respond(ctx, booking)
	if err != nil {
		return res, err
	}

	s.dispatch(ctx, booking.ID, s.statusEffects(booking, caller, res)...)

	return res, nil
}

// Update applies a PATCH body. A rating riding along is checked against the
// status the booking will have after the patch, before any write.
func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty")
	}

	caller, err := callerID(ctx)
	if err != nil {
		return res, err
	}

	if req.Rating != nil {
		if err = validateRating(*req.Rating); err != nil {
			return res, err
		}

		booking, err := s.load(ctx, id)
		if err != nil {
			return res, err
		}

		after := booking.Status
		if req.Status != "" {
			after = model.Status(req.Status)
		}

		if err = checkRating(booking, after, caller); err != nil {
			return res, err
		}
	}

	if req.Status != "" {
		res, err = s.UpdateStatus(ctx, id, req.Status)
		if err != nil {
			return res, err
		}
	}

	if req.Rating != nil {
		return s.SubmitRating(ctx, id, dto.SubmitRatingRequest{Rating: *req.Rating, Feedback: req.Feedback})
	}

	return res, nil
}

func (s *serviceImpl) statusEffects(booking model.Booking, initiator string, res dto.BookingResponse) []effect {
	participants := []string{booking.StudentID, booking.TutorID}

	switch booking.Status {
	case model.StatusConfirmed:
		return []effect{
			s.notifyEffect(notificationDto.NotifyRequest{
				UserID:    booking.StudentID,
				Type:      notificationModel.TypeBookingConfirmed,
				Title:     "Booking confirmed",
				Message:   bookingConfirmedMessage(booking),
				Link:      booking.VideoLink,
				BookingID: booking.ID,
			}),
			s.chatEffect(booking, booking.TutorID, bookingConfirmedMessage(booking)),
			s.publishEffect(event.BookingConfirmed, booking, res, participants...),
		}
	case model.StatusCancelled:
		name := "The student"
		if initiator == booking.TutorID {
			name = "The tutor"
		}

		if res.Student != nil && initiator == booking.StudentID {
			name = res.Student.Name
		} else if res.Tutor != nil && initiator == booking.TutorID {
			name = res.Tutor.Name
		}

		return []effect{
			s.notifyEffect(notificationDto.NotifyRequest{
				UserID:    booking.Counterpart(initiator),
				Type:      notificationModel.TypeBookingCancelled,
				Title:     "Booking cancelled",
				Message:   fmt.Sprintf("%s cancelled the %s session on %s", name, subjectOrDefault(booking.Subject), formatTime(booking.StartTime)),
				BookingID: booking.ID,
			}),
			s.publishEffect(event.BookingCancelled, booking, res, participants...),
		}
	case model.StatusCompleted:
		return []effect{
			s.completionEffect(booking),
			s.publishEffect(event.BookingCompleted, booking, res, participants...),
		}
	}

	return nil
}

func verb(status model.Status) string {
	if status == model.StatusCompleted {
		return "complete"
	}

	return "confirm"
}
