package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
	"tutorhub/config"
	"tutorhub/infras/otel/mocks"
	bookingMocks "tutorhub/internal/domains/booking/mocks"
	"tutorhub/internal/domains/booking/model"
	"tutorhub/internal/domains/booking/model/dto"
	"tutorhub/internal/domains/booking/service"
	userMocks "tutorhub/internal/domains/user/mocks"
	userModel "tutorhub/internal/domains/user/model"
	"tutorhub/shared/cache"
	cacheMocks "tutorhub/shared/cache/mocks"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/failure"
	"tutorhub/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type mocked struct {
	svc      service.Booking
	repo     *bookingMocks.MockBooking
	userRepo *userMocks.MockUser
	cache    *cacheMocks.MockRedisCache
	rec      *recorder
}

func newMocked(t *testing.T) *mocked {
	t.Helper()

	ctrl := gomock.NewController(t)

	m := &mocked{
		repo:     bookingMocks.NewMockBooking(ctrl),
		userRepo: userMocks.NewMockUser(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
		rec:      &recorder{},
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	clock := &timezone.FixedClock{At: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)}
	m.svc = service.New(m.repo, m.userRepo, m.rec, m.rec, m.rec, m.rec, cfg, m.cache, clock, mocks.NewOtel())

	return m
}

func participantsFixture() []userModel.User {
	return []userModel.User{
		{ID: studentID, Name: "Sam Student", Role: constant.RoleStudent, Active: true},
		{ID: tutorID, Name: "Tara Tutor", Role: constant.RoleTutor, Active: true},
	}
}

func pendingBooking() model.Booking {
	return model.Booking{
		ID:        "55555555-5555-4555-8555-555555555555",
		StudentID: studentID,
		TutorID:   tutorID,
		StartTime: ts(10, 0),
		EndTime:   ts(11, 0),
		Status:    model.StatusPending,
		Platform:  model.PlatformJitsi,
		MeetingID: "TutorHub_abc",
	}
}

func TestCreate_RepositoryFailures(t *testing.T) {
	dbErr := errors.New("connection reset")

	tests := []struct {
		name    string
		setup   func(m *mocked)
		code    int
		message string
	}{
		{
			name: "participant lookup fails",
			setup: func(m *mocked) {
				m.userRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, dbErr)
			},
			code: http.StatusInternalServerError,
		},
		{
			name: "conflict check fails",
			setup: func(m *mocked) {
				m.userRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(participantsFixture(), nil)
				m.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, dbErr)
			},
			code: http.StatusInternalServerError,
		},
		{
			name: "constraint rejects a concurrent insert",
			setup: func(m *mocked) {
				m.userRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(participantsFixture(), nil)
				m.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(failure.Conflict("slot conflict"))
			},
			code:    http.StatusConflict,
			message: "slot conflict",
		},
		{
			name: "insert fails",
			setup: func(m *mocked) {
				m.userRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(participantsFixture(), nil)
				m.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(dbErr)
			},
			code: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocked(t)
			tt.setup(m)

			_, err := m.svc.Create(as(studentID), request(studentID, tutorID, ts(10, 0), ts(11, 0)))
			assertFailure(t, err, tt.code, tt.message)
			assert.Empty(t, m.rec.notifications)
			assert.Empty(t, m.rec.events)
		})
	}
}

func TestUpdateStatus_LostRace(t *testing.T) {
	m := newMocked(t)
	booking := pendingBooking()

	m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)
	m.repo.EXPECT().
		UpdateAffected(gomock.Any(), gomock.Any(), model.FilterByIDAndStatus(booking.ID, model.StatusPending)).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
			assert.Equal(t, model.StatusConfirmed, fields[model.FieldStatus])
			assert.Equal(t, "https://meet.jit.si/TutorHub_abc", fields[model.FieldVideoLink])

			return 0, nil
		})

	_, err := m.svc.UpdateStatus(as(tutorID), booking.ID, string(model.StatusConfirmed))
	assertFailure(t, err, http.StatusConflict, "booking was modified concurrently")
	assert.Empty(t, m.rec.events)
}

func TestSubmitRating_LostRace(t *testing.T) {
	m := newMocked(t)
	booking := pendingBooking()
	booking.Status = model.StatusCompleted

	m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)
	m.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

	_, err := m.svc.SubmitRating(as(studentID), booking.ID, dto.SubmitRatingRequest{Rating: 5})
	assertFailure(t, err, http.StatusConflict, "booking already rated")
	assert.Empty(t, m.rec.ratings)
}

func TestGet_RepositoryFailure(t *testing.T) {
	m := newMocked(t)

	m.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.ErrMiss)
	m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, errors.New("timeout"))

	_, err := m.svc.Get(as(studentID), pendingBooking().ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
}

func TestSendReminders_Failures(t *testing.T) {
	t.Run("query error aborts the sweep", func(t *testing.T) {
		m := newMocked(t)

		m.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

		sent, err := m.svc.SendReminders(context.Background(), ts(9, 45))
		require.Error(t, err)
		assert.Zero(t, sent)
	})

	t.Run("claimed elsewhere is skipped", func(t *testing.T) {
		m := newMocked(t)
		booking := pendingBooking()
		booking.Status = model.StatusConfirmed

		m.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Booking{booking}, nil)
		m.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
		m.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		sent, err := m.svc.SendReminders(context.Background(), ts(9, 45))
		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Empty(t, m.rec.notifications)
	})
}
