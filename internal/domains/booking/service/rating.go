package service

import (
	"context"
	"fmt"
	"strings"
	"tutorhub/internal/domains/booking/model"
	"tutorhub/internal/domains/booking/model/dto"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	minRating = 1
	maxRating = 5
)

var (
	errOnlyStudentRates  = failure.Forbidden("only the student can rate this booking")
	errAlreadyRated      = failure.Conflict("booking already rated")
	errNotCompleted      = failure.BadRequestFromString("only completed bookings can be rated")
	errFeedbackSubmitted = failure.Conflict("feedback already submitted")
)

func validateRating(rating int) error {
	if rating < minRating || rating > maxRating {
		return failure.BadRequestFromString("rating must be between 1 and 5")
	}

	return nil
}

// checkRating applies the rating gates to booking as if its status were status.
func checkRating(booking model.Booking, status model.Status, caller string) error {
	if status != model.StatusCompleted {
		return errNotCompleted
	}

	if caller != booking.StudentID {
		return errOnlyStudentRates
	}

	if booking.Rated() {
		return errAlreadyRated
	}

	return nil
}

func (s *serviceImpl) SubmitRating(ctx context.Context, id string, req dto.SubmitRatingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SubmitRating")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, err := callerID(ctx)
	if err != nil {
		return res, err
	}

	if err = validateRating(req.Rating); err != nil {
		return res, err
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if err = checkRating(booking, booking.Status, caller); err != nil {
		return res, err
	}

	now := s.clock.Now()
	rating := req.Rating
	feedback := strings.TrimSpace(req.Feedback)

	fields := modified(map[string]any{model.FieldRating: rating}, now, caller)
	if feedback != "" {
		fields[model.FieldStudentFeedback] = feedback
	}

	filter := model.FilterByID(booking.ID)
	filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldRating, Operator: gDto.FilterIsNull, Table: model.TableName})

	affected, err := s.repo.UpdateAffected(ctx, fields, filter)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to rate booking")

		return res, fmt.Errorf("failed to rate booking: %w", err)
	}

	if affected == 0 {
		return res, errAlreadyRated
	}

	booking.Rating = &rating
	if feedback != "" {
		booking.StudentFeedback = feedback
	}

	booking.ModifiedAt = now
	booking.ModifiedBy = caller

	s.invalidate(ctx, booking.ID)

	res, err = s.respond(ctx, booking)
	if err != nil {
		return res, err
	}

	s.dispatch(ctx, booking.ID, s.ratingEffect(booking, rating))

	return res, nil
}

// SubmitTutorFeedback records the tutor's note once; later attempts conflict.
func (s *serviceImpl) SubmitTutorFeedback(ctx context.Context, id string, req dto.SubmitFeedbackRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SubmitTutorFeedback")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, err := callerID(ctx)
	if err != nil {
		return res, err
	}

	feedback := strings.TrimSpace(req.Feedback)
	if feedback == "" {
		return res, failure.BadRequestFromString("feedback cannot be empty")
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if booking.Status != model.StatusCompleted {
		return res, failure.BadRequestFromString("feedback can only be submitted for completed bookings")
	}

	if caller != booking.TutorID {
		return res, failure.Forbidden("only the tutor can leave feedback on this booking")
	}

	if booking.TutorFeedback != "" {
		return res, errFeedbackSubmitted
	}

	now := s.clock.Now()
	fields := modified(map[string]any{model.FieldTutorFeedback: feedback}, now, caller)

	filter := model.FilterByID(booking.ID)
	filter.Filters = append(filter.Filters, gDto.Filter{
		ArgName:  "empty_feedback",
		Field:    model.FieldTutorFeedback,
		Operator: gDto.FilterOperatorEq,
		Value:    "",
		Table:    model.TableName,
	})

	affected, err := s.repo.UpdateAffected(ctx, fields, filter)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to submit tutor feedback")

		return res, fmt.Errorf("failed to submit tutor feedback: %w", err)
	}

	if affected == 0 {
		return res, errFeedbackSubmitted
	}

	booking.TutorFeedback = feedback
	booking.ModifiedAt = now
	booking.ModifiedBy = caller

	s.invalidate(ctx, booking.ID)

	return s.respond(ctx, booking)
}
