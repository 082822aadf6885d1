package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
	"tutorhub/infras/otel/mocks"
	notificationMocks "tutorhub/internal/domains/notification/mocks"
	"tutorhub/internal/domains/notification/model"
	"tutorhub/internal/domains/notification/model/dto"
	"tutorhub/internal/domains/notification/service"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/event"
	"tutorhub/shared/failure"
	"tutorhub/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const ownerID = "11111111-1111-4111-8111-111111111111"

type sinkFunc func(ctx context.Context, ev event.Event) error

func (f sinkFunc) Publish(ctx context.Context, ev event.Event) error {
	return f(ctx, ev)
}

func withUser(userID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, userID)
}

func TestNotificationService_Notify(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	req := dto.NotifyRequest{
		UserID:    ownerID,
		Type:      model.TypeBookingConfirmed,
		Title:     "Booking confirmed",
		Message:   "See you soon",
		BookingID: "booking-1",
	}

	t.Run("stores then pushes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notificationMocks.NewMockNotification(ctrl)

		var stored model.Notification

		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n model.Notification) error {
			stored = n

			return nil
		})

		var published []event.Event

		sink := sinkFunc(func(_ context.Context, ev event.Event) error {
			published = append(published, ev)

			return nil
		})

		svc := service.New(repo, sink, &timezone.FixedClock{At: now}, mocks.NewOtel())

		require.NoError(t, svc.Notify(context.Background(), req))

		assert.NotEmpty(t, stored.ID)
		assert.Equal(t, ownerID, stored.UserID)
		assert.False(t, stored.Read)
		assert.Equal(t, now, stored.CreatedAt)

		require.Len(t, published, 1)
		assert.Equal(t, event.NotificationNew, published[0].Type)
		assert.Equal(t, []string{ownerID}, published[0].Recipients)

		payload, ok := published[0].Payload.(dto.NotificationResponse)
		require.True(t, ok)
		assert.Equal(t, stored.ID, payload.ID)
	})

	t.Run("push failure is swallowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notificationMocks.NewMockNotification(ctrl)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		sink := sinkFunc(func(context.Context, event.Event) error {
			return errors.New("redis down")
		})

		svc := service.New(repo, sink, &timezone.FixedClock{At: now}, mocks.NewOtel())

		assert.NoError(t, svc.Notify(context.Background(), req))
	})

	t.Run("insert failure is returned and nothing is pushed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notificationMocks.NewMockNotification(ctrl)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		sink := sinkFunc(func(context.Context, event.Event) error {
			t.Fatal("unexpected publish")

			return nil
		})

		svc := service.New(repo, sink, &timezone.FixedClock{At: now}, mocks.NewOtel())

		assert.Error(t, svc.Notify(context.Background(), req))
	})

	t.Run("recipient required", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := service.New(notificationMocks.NewMockNotification(ctrl), nil, &timezone.FixedClock{At: now}, mocks.NewOtel())

		err := svc.Notify(context.Background(), dto.NotifyRequest{Type: model.TypeLectureLink})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestNotificationService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := notificationMocks.NewMockNotification(ctrl)
	svc := service.New(repo, nil, timezone.NewClock(), mocks.NewOtel())

	expectedParams := gDto.QueryParams{Page: 1, Limit: model.InboxSize, SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirDesc}

	repo.EXPECT().
		GetAll(gomock.Any(), expectedParams, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Notification, error) {
			require.Len(t, filter.Filters, 1)
			assert.Equal(t, ownerID, filter.Filters[0].(gDto.Filter).Value)

			return []model.Notification{
				{ID: "n2", UserID: ownerID, Type: model.TypeLectureLink},
				{ID: "n1", UserID: ownerID, Type: model.TypeBookingRequest, Read: true},
			}, nil
		})

	res, err := svc.GetAll(withUser(ownerID))
	require.NoError(t, err)
	require.Len(t, res.Notifications, 2)
	assert.Equal(t, "n2", res.Notifications[0].ID)
	assert.Equal(t, 1, res.Unread)

	_, err = svc.GetAll(context.Background())
	assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	id := "22222222-2222-4222-8222-222222222222"

	tests := []struct {
		name     string
		id       string
		setup    func(repo *notificationMocks.MockNotification)
		wantCode int
	}{
		{
			name: "owner marks notification",
			id:   id,
			setup: func(repo *notificationMocks.MockNotification) {
				repo.EXPECT().
					UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
						assert.Equal(t, true, fields[model.FieldRead])
						assert.Len(t, filter.Filters, 2)

						return 1, nil
					})
			},
		},
		{
			name: "not the owner",
			id:   id,
			setup: func(repo *notificationMocks.MockNotification) {
				repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "malformed id",
			id:       "nope",
			setup:    func(*notificationMocks.MockNotification) {},
			wantCode: http.StatusNotFound,
		},
		{
			name: "store failure",
			id:   id,
			setup: func(repo *notificationMocks.MockNotification) {
				repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := notificationMocks.NewMockNotification(ctrl)
			tt.setup(repo)

			svc := service.New(repo, nil, timezone.NewClock(), mocks.NewOtel())

			err := svc.MarkAsRead(withUser(ownerID), tt.id)
			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}
