package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"tutorhub/infras/otel/mocks"
	"tutorhub/internal/domains/user/model/dto"
	"tutorhub/internal/domains/user/service"
	"tutorhub/internal/handlers/user"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	service.User

	params  gDto.QueryParams
	role    string
	subject string
	id      string
	update  dto.UpdateProfileRequest
	err     error
}

func (s *stubService) GetAll(_ context.Context, params gDto.QueryParams, role, subject string) (dto.GetUsersResponse, error) {
	s.params, s.role, s.subject = params, role, subject

	return dto.GetUsersResponse{Users: []dto.UserResponse{}}, s.err
}

func (s *stubService) Get(_ context.Context, id string) (dto.UserResponse, error) {
	s.id = id

	return dto.UserResponse{ID: id}, s.err
}

func (s *stubService) UpdateProfile(_ context.Context, req dto.UpdateProfileRequest) (dto.UserResponse, error) {
	s.update = req

	return dto.UserResponse{ID: "u-1", Name: req.Name}, s.err
}

func serve(svc *stubService, request *http.Request) *httptest.ResponseRecorder {
	handler := user.New(svc, mocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	return recorder
}

func TestHandler_GetUsers(t *testing.T) {
	svc := &stubService{}

	recorder := serve(svc, httptest.NewRequest(http.MethodGet, "/users?role=tutor&subjects=Math&limit=500", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, constant.RoleTutor, svc.role)
	assert.Equal(t, "Math", svc.subject)
	assert.Equal(t, constant.MaxValueLimit, svc.params.Limit)
	assert.Equal(t, constant.DefaultValuePage, svc.params.Page)
}

func TestHandler_GetMe(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		svc := &stubService{}

		recorder := serve(svc, httptest.NewRequest(http.MethodGet, "/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Empty(t, svc.id)
	})

	t.Run("authenticated", func(t *testing.T) {
		svc := &stubService{}

		request := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		request = request.WithContext(context.WithValue(request.Context(), constant.ContextKeyUserID, "u-1"))

		recorder := serve(svc, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "u-1", svc.id)
	})
}

func TestHandler_GetUserByID(t *testing.T) {
	svc := &stubService{err: failure.NotFound("user")}

	recorder := serve(svc, httptest.NewRequest(http.MethodGet, "/users/u-9", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "u-9", svc.id)
}

func TestHandler_UpdateMe(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "valid", body: `{"name":"Ada Lovelace","hourlyRate":30}`, code: http.StatusOK},
		{name: "name too short", body: `{"name":"A"}`, code: http.StatusBadRequest},
		{name: "negative rate", body: `{"hourlyRate":-1}`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}

			recorder := serve(svc, httptest.NewRequest(http.MethodPatch, "/users/me", strings.NewReader(tt.body)))

			require.Equal(t, tt.code, recorder.Code, recorder.Body.String())

			if tt.code == http.StatusOK {
				assert.Equal(t, "Ada Lovelace", svc.update.Name)
			}
		})
	}
}
