package service

import (
	"context"
	"fmt"
	"tutorhub/infras/otel"
	"tutorhub/internal/domains/notification/model"
	"tutorhub/internal/domains/notification/model/dto"
	"tutorhub/internal/domains/notification/repository"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/event"
	"tutorhub/shared/failure"
	"tutorhub/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Notification interface {
	Notify(ctx context.Context, req dto.NotifyRequest) error
	GetAll(ctx context.Context) (dto.GetNotificationsResponse, error)
	MarkAsRead(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Notification
	sink  event.Sink
	clock timezone.Clock
	otel  otel.Otel
}

func New(repo repository.Notification, sink event.Sink, clock timezone.Clock, otel otel.Otel) Notification {
	return &serviceImpl{
		repo:  repo,
		sink:  sink,
		clock: clock,
		otel:  otel,
	}
}

// Notify stores the notification and pushes it to the recipient. The push is best effort.
func (s *serviceImpl) Notify(ctx context.Context, req dto.NotifyRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Notify")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.UserID == constant.Empty {
		return failure.BadRequestFromString("notification recipient is required")
	}

	now := s.clock.Now()
	notification := req.ToModel(now)

	if err = s.repo.Insert(ctx, notification); err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to insert notification")

		return fmt.Errorf("failed to insert notification: %w", err)
	}

	if s.sink == nil {
		return nil
	}

	var payload dto.NotificationResponse
	payload.FromModel(notification)

	if err := s.sink.Publish(ctx, event.Event{
		Type:       event.NotificationNew,
		BookingID:  notification.BookingID,
		Recipients: []string{notification.UserID},
		Payload:    payload,
		OccurredAt: now,
	}); err != nil {
		log.Warn().Err(err).Str("notification_id", notification.ID).Msg("failed to push notification")
	}

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context) (res dto.GetNotificationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	params := gDto.QueryParams{
		Page:    1,
		Limit:   model.InboxSize,
		SortBy:  constant.FieldCreatedAt,
		SortDir: gDto.SortDirDesc,
	}

	notifications, err := s.repo.GetAll(ctx, params, byUser(userID))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to get notifications")

		return res, fmt.Errorf("failed to get notifications: %w", err)
	}

	res.FromModels(notifications)

	return res, nil
}

func (s *serviceImpl) MarkAsRead(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkAsRead")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		return failure.Unauthorized("unauthorized")
	}

	if uuid.Validate(id) != nil {
		return failure.NotFound("notification not found")
	}

	filter := byUser(userID)
	filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: id, Table: model.TableName})

	fields := map[string]any{
		model.FieldRead:          true,
		constant.FieldModifiedAt: s.clock.Now(),
		constant.FieldModifiedBy: userID,
	}

	affected, err := s.repo.UpdateAffected(ctx, fields, filter)
	if err != nil {
		log.Error().Err(err).Str("notification_id", id).Msg("failed to mark notification as read")

		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	// someone else's notification looks the same as a missing one
	if affected == 0 {
		return failure.NotFound("notification not found")
	}

	return nil
}

func byUser(userID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldUserID, Operator: gDto.FilterOperatorEq, Value: userID, Table: model.TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}
}
