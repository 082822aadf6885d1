package permissions_test

import (
	"net/http"
	"testing"
	"tutorhub/permissions"
	"tutorhub/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_EmbeddedTable(t *testing.T) {
	table := permissions.Get()
	require.NotNil(t, table)

	tests := []struct {
		name    string
		method  string
		pattern string
		public  bool
		allowed []string
		denied  []string
	}{
		{name: "login is public", method: http.MethodPost, pattern: "/v1/auth/login", public: true},
		{name: "only students create bookings", method: http.MethodPost, pattern: "/v1/bookings/", allowed: []string{constant.RoleStudent, constant.RoleAdmin}, denied: []string{constant.RoleTutor}},
		{name: "only students rate", method: http.MethodPost, pattern: "/v1/bookings/{id}/rating", allowed: []string{constant.RoleStudent}, denied: []string{constant.RoleTutor, constant.RoleAdmin}},
		{name: "only tutors leave feedback", method: http.MethodPost, pattern: "/v1/bookings/{id}/feedback", allowed: []string{constant.RoleTutor}, denied: []string{constant.RoleStudent}},
		{name: "tutor report", method: http.MethodGet, pattern: "/v1/performance/tutor", allowed: []string{constant.RoleTutor}, denied: []string{constant.RoleStudent}},
		{name: "both parties update bookings", method: http.MethodPatch, pattern: "/v1/bookings/{id}", allowed: []string{constant.RoleStudent, constant.RoleTutor}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := table.Find(tt.pattern, tt.method)

			assert.Equal(t, tt.public, endpoint.Public)

			for _, role := range tt.allowed {
				assert.True(t, endpoint.Allows(role), role)
			}

			for _, role := range tt.denied {
				assert.False(t, endpoint.Allows(role), role)
			}
		})
	}
}

func TestFind_Unknown(t *testing.T) {
	table, err := permissions.Parse([]byte(`{"endpoints":[{"method":"GET","path":"/v1/bookings/","roles":["student"]}]}`))
	require.NoError(t, err)

	endpoint := table.Find("/v1/bookings/", http.MethodPost)

	assert.False(t, endpoint.Public)
	assert.True(t, endpoint.Allows(constant.RoleTutor))
}

func TestParse_Invalid(t *testing.T) {
	_, err := permissions.Parse([]byte(`{"endpoints":`))
	assert.Error(t, err)

	_, err = permissions.Parse([]byte(`{"endpoints":[{"method":"GET","path":"/a"},{"method":"GET","path":"/a"}]}`))
	assert.ErrorContains(t, err, "duplicate permission entry GET /a")
}
