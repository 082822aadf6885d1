package notification_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"tutorhub/infras/otel/mocks"
	"tutorhub/internal/domains/notification/model/dto"
	"tutorhub/internal/domains/notification/service"
	"tutorhub/internal/handlers/notification"
	"tutorhub/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type stubService struct {
	service.Notification

	marked string
	err    error
}

func (s *stubService) GetAll(context.Context) (dto.GetNotificationsResponse, error) {
	return dto.GetNotificationsResponse{Notifications: []dto.NotificationResponse{}, Unread: 2}, s.err
}

func (s *stubService) MarkAsRead(_ context.Context, id string) error {
	s.marked = id

	return s.err
}

func serve(svc *stubService, method, target string) *httptest.ResponseRecorder {
	handler := notification.New(svc, mocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))

	return recorder
}

func TestHandler_GetNotifications(t *testing.T) {
	recorder := serve(&stubService{}, http.MethodGet, "/notifications")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"unread":2`)
}

func TestHandler_MarkAsRead(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		svc := &stubService{}

		recorder := serve(svc, http.MethodPatch, "/notifications/n-1/read")

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "n-1", svc.marked)
	})

	t.Run("someone else's", func(t *testing.T) {
		svc := &stubService{err: failure.NotFound("notification")}

		recorder := serve(svc, http.MethodPatch, "/notifications/n-2/read")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
