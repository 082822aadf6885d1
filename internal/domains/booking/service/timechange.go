package service

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"tutorhub/internal/domains/booking/model"
	"tutorhub/internal/domains/booking/model/dto"
	notificationModel "tutorhub/internal/domains/notification/model"
	notificationDto "tutorhub/internal/domains/notification/model/dto"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/event"
	"tutorhub/shared/failure"

	"github.com/rs/zerolog/log"
)

var (
	errTimeChangePending  = failure.Conflict("a time change request is already pending")
	errTimeChangeConflict = failure.Conflict("new time conflicts with existing booking")
	errRescheduleInPast   = failure.BadRequestFromString("cannot reschedule to the past")
)

func (s *serviceImpl) ProposeTimeChange(ctx context.Context, id string, req dto.ProposeTimeChangeRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ProposeTimeChange")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, err := callerID(ctx)
	if err != nil {
		return res, err
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if !booking.Status.Active() {
		return res, failure.BadRequestFromString("time changes are only allowed for pending or confirmed bookings")
	}

	if !booking.IsParticipant(caller) {
		return res, failure.Forbidden("you are not a participant of this booking")
	}

	if booking.TimeChangeRequest.Pending() {
		return res, errTimeChangePending
	}

	start, end, err := s.parseInterval(req.NewStartTime, req.NewEndTime, errRescheduleInPast)
	if err != nil {
		return res, err
	}

	if err = s.checkReschedule(ctx, booking, start, end); err != nil {
		return res, err
	}

	now := s.clock.Now()
	requestedBy := caller
	tcStatus := string(model.TimeChangePending)

	fields := modified(map[string]any{
		model.FieldTimeChangeNewStartTime: start,
		model.FieldTimeChangeNewEndTime:   end,
		model.FieldTimeChangeRequestedBy:  requestedBy,
		model.FieldTimeChangeStatus:       tcStatus,
	}, now, caller)

	filter := activeBookingFilter(booking.ID)
	filter.Filters = append(filter.Filters, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorOr,
		Filters: []any{
			gDto.Filter{Field: model.FieldTimeChangeStatus, Operator: gDto.FilterIsNull, Table: model.TableName},
			gDto.Filter{
				ArgName:  "open_tc_status",
				Field:    model.FieldTimeChangeStatus,
				Operator: gDto.FilterOperatorNotEq,
				Value:    string(model.TimeChangePending),
				Table:    model.TableName,
			},
		},
	})

	affected, err := s.repo.UpdateAffected(ctx, fields, filter)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to propose time change")

		return res, fmt.Errorf("failed to propose time change: %w", err)
	}

	if affected == 0 {
		return res, errTimeChangePending
	}

	booking.TimeChangeRequest = model.TimeChangeRequest{
		NewStartTime: &start,
		NewEndTime:   &end,
		RequestedBy:  &requestedBy,
		Status:       &tcStatus,
	}
	booking.ModifiedAt = now
	booking.ModifiedBy = caller

	s.invalidate(ctx, booking.ID)

	res, err = s.respond(ctx, booking)
	if err != nil {
		return res, err
	}

	counterpart := booking.Counterpart(caller)

	s.dispatch(ctx, booking.ID,
		s.notifyEffect(notificationDto.NotifyRequest{
			UserID:    counterpart,
			Type:      notificationModel.TypeTimeChangeRequest,
			Title:     "Time change requested",
			Message:   fmt.Sprintf("A new time was proposed for your %s session: %s to %s", subjectOrDefault(booking.Subject), formatTime(start), formatTime(end)),
			BookingID: booking.ID,
		}),
		s.publishEffect(event.BookingTimeChangeRequest, booking, res, counterpart),
	)

	return res, nil
}

func (s *serviceImpl) RespondTimeChange(ctx context.Context, id string, req dto.RespondTimeChangeRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RespondTimeChange")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, err := callerID(ctx)
	if err != nil {
		return res, err
	}

	if req.Accept == nil {
		return res, failure.BadRequestFromString("accept is required")
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if !booking.Status.Active() {
		return res, failure.BadRequestFromString("time changes are only allowed for pending or confirmed bookings")
	}

	if !booking.IsParticipant(caller) {
		return res, failure.Forbidden("you are not a participant of this booking")
	}

	tc := booking.TimeChangeRequest
	if !tc.Pending() || tc.NewStartTime == nil || tc.NewEndTime == nil {
		return res, failure.BadRequestFromString("no pending time change request")
	}

	if tc.RequestedBy != nil && *tc.RequestedBy == caller {
		return res, failure.Forbidden("you cannot respond to your own request")
	}

	accepted := *req.Accept
	now := s.clock.Now()
	resolved := string(model.TimeChangeRejected)
	fields := map[string]any{}

	if accepted {
		if err = s.checkReschedule(ctx, booking, *tc.NewStartTime, *tc.NewEndTime); err != nil {
			return res, err
		}

		resolved = string(model.TimeChangeAccepted)
		fields[model.FieldStartTime] = *tc.NewStartTime
		fields[model.FieldEndTime] = *tc.NewEndTime

		for _, window := range model.ReminderWindows {
			fields[window.Field] = false
		}
	}

	fields[model.FieldTimeChangeStatus] = resolved
	modified(fields, now, caller)

	filter := activeBookingFilter(booking.ID)
	filter.Filters = append(filter.Filters, gDto.Filter{
		ArgName:  "expected_tc_status",
		Field:    model.FieldTimeChangeStatus,
		Operator: gDto.FilterOperatorEq,
		Value:    string(model.TimeChangePending),
		Table:    model.TableName,
	})

	affected, err := s.repo.UpdateAffected(ctx, fields, filter)
	if err != nil {
		if failure.Is(err, http.StatusConflict) {
			return res, errTimeChangeConflict
		}

		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to respond to time change")

		return res, fmt.Errorf("failed to respond to time change: %w", err)
	}

	if affected == 0 {
		return res, errConcurrentModification
	}

	if accepted {
		booking.StartTime = *tc.NewStartTime
		booking.EndTime = *tc.NewEndTime
		booking.Reminders = model.Reminders{}
	}

	booking.TimeChangeRequest.Status = &resolved
	booking.ModifiedAt = now
	booking.ModifiedBy = caller

	s.invalidate(ctx, booking.ID)

	res, err = s.respond(ctx, booking)
	if err != nil {
		return res, err
	}

	requester := booking.Counterpart(caller)
	notification := notificationDto.NotifyRequest{
		UserID:    requester,
		Type:      notificationModel.TypeTimeChangeRejected,
		Title:     "Time change rejected",
		Message:   fmt.Sprintf("Your proposed time for the %s session was rejected", subjectOrDefault(booking.Subject)),
		BookingID: booking.ID,
	}

	if accepted {
		notification.Type = notificationModel.TypeTimeChangeAccepted
		notification.Title = "Time change accepted"
		notification.Message = fmt.Sprintf("Your %s session now runs %s to %s", subjectOrDefault(booking.Subject), formatTime(booking.StartTime), formatTime(booking.EndTime))
	}

	s.dispatch(ctx, booking.ID,
		s.notifyEffect(notification),
		s.publishEffect(event.BookingTimeChangeResponse, booking, TimeChangeResponsePayload{Accepted: accepted, Booking: res}, requester),
	)

	return res, nil
}

// checkReschedule rejects a new interval that overlaps the tutor's other active bookings.
func (s *serviceImpl) checkReschedule(ctx context.Context, booking model.Booking, start, end time.Time) error {
	conflict, err := s.repo.Exist(ctx, model.OverlapFilter(booking.TutorID, start, end, booking.ID))
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to check time change conflicts")

		return fmt.Errorf("failed to check time change conflicts: %w", err)
	}

	if conflict {
		return errTimeChangeConflict
	}

	return nil
}

// activeBookingFilter matches the booking while it is still pending or confirmed.
func activeBookingFilter(id string) gDto.FilterGroup {
	filter := model.FilterByID(id)
	filter.Filters = append(filter.Filters, gDto.Filter{
		ArgName:  "active_status",
		Field:    model.FieldStatus,
		Operator: gDto.FilterOperatorIn,
		Value:    []model.Status{model.StatusPending, model.StatusConfirmed},
		Table:    model.TableName,
	})

	return filter
}
