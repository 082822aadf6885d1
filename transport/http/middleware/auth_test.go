package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"tutorhub/config"
	"tutorhub/infras/jwt"
	jwtMocks "tutorhub/infras/jwt/mocks"
	"tutorhub/infras/otel/mocks"
	"tutorhub/permissions"
	"tutorhub/shared/constant"
	"tutorhub/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const routeTable = `{
  "endpoints": [
    {"method": "POST", "path": "/v1/auth/login", "public": true},
    {"method": "POST", "path": "/v1/bookings/{id}/rating", "roles": ["student"]}
  ]
}`

func newRouter(t *testing.T) (*chi.Mux, *jwtMocks.MockJWT) {
	t.Helper()

	table, err := permissions.Parse([]byte(routeTable))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.APIKey = "internal-secret"

	jwtService := jwtMocks.NewMockJWT(gomock.NewController(t))
	authRole := middleware.NewAuthRoleMiddleware(jwtService, mocks.NewOtel(), table, cfg)

	echo := func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value(constant.ContextKeyUserID).(string)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(userID))
	}

	mux := chi.NewRouter()
	mux.Group(func(r chi.Router) {
		r.Use(authRole.APIKey)
		r.Use(authRole.Auth)
		r.Use(authRole.RBAC)

		r.Route("/v1", func(r chi.Router) {
			r.Post("/auth/login", echo)
			r.Post("/bookings/{id}/rating", echo)
			r.Get("/bookings/{id}", echo)
		})
	})

	return mux, jwtService
}

func call(mux *chi.Mux, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, nil)
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, request)

	return recorder
}

func bearer(token string) map[string]string {
	return map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token}
}

func TestAuth_PublicRoute(t *testing.T) {
	mux, _ := newRouter(t)

	recorder := call(mux, http.MethodPost, "/v1/auth/login", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestAuth_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		setup   func(m *jwtMocks.MockJWT)
		message string
	}{
		{name: "missing header", message: "Missing authorization header"},
		{
			name:    "malformed header",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Token abc"},
			message: "Invalid authorization header format",
		},
		{
			name:    "expired token",
			headers: bearer("old"),
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "old", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			message: "Token has expired",
		},
		{
			name:    "claims without role",
			headers: bearer("partial"),
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "partial", jwt.AccessToken).Return(&jwt.Claims{UserID: "s-1"}, nil)
			},
			message: "Invalid token claims",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, jwtService := newRouter(t)
			if tt.setup != nil {
				tt.setup(jwtService)
			}

			recorder := call(mux, http.MethodGet, "/v1/bookings/b-1", tt.headers)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.message)
		})
	}
}

func TestAuth_PutsCallerOnContext(t *testing.T) {
	mux, jwtService := newRouter(t)
	jwtService.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(&jwt.Claims{UserID: "s-1", Role: constant.RoleStudent}, nil)

	recorder := call(mux, http.MethodGet, "/v1/bookings/b-1", bearer("good"))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "s-1", recorder.Body.String())
}

func TestRBAC(t *testing.T) {
	tests := []struct {
		role string
		code int
	}{
		{role: constant.RoleStudent, code: http.StatusOK},
		{role: constant.RoleTutor, code: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			mux, jwtService := newRouter(t)
			jwtService.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(&jwt.Claims{UserID: "u-1", Role: tt.role}, nil)

			recorder := call(mux, http.MethodPost, "/v1/bookings/b-1/rating", bearer("good"))

			assert.Equal(t, tt.code, recorder.Code)
		})
	}
}

func TestAPIKey(t *testing.T) {
	mux, _ := newRouter(t)

	valid := call(mux, http.MethodPost, "/v1/bookings/b-1/rating", map[string]string{constant.RequestHeaderAPIKey: "internal-secret"})
	assert.Equal(t, http.StatusOK, valid.Code)

	invalid := call(mux, http.MethodGet, "/v1/bookings/b-1", map[string]string{constant.RequestHeaderAPIKey: "guess"})
	assert.Equal(t, http.StatusForbidden, invalid.Code)
}
