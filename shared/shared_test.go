package shared_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"tutorhub/shared"
	"tutorhub/shared/cache/mocks"
	"tutorhub/shared/constant"
	"tutorhub/shared/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{name: "no rows", total: 0, limit: 10, expected: 1},
		{name: "exact pages", total: 20, limit: 10, expected: 2},
		{name: "partial last page", total: 21, limit: 10, expected: 3},
		{name: "fewer rows than limit", total: 3, limit: 10, expected: 1},
		{name: "zero limit", total: 5, limit: 0, expected: 1},
		{name: "negative limit", total: 5, limit: -1, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

type profileUpdate struct {
	Name       string    `db:"name"`
	HourlyRate float64   `db:"hourly_rate"`
	Bio        *string   `db:"bio"`
	LastLogin  time.Time `db:"last_login"`
	Internal   string
}

func TestTransformFields(t *testing.T) {
	bio := "Calculus and linear algebra"

	fields := shared.TransformFields(profileUpdate{
		Name:     "Tara Tutor",
		Bio:      &bio,
		Internal: "ignored",
	}, "user-1")

	assert.Equal(t, "Tara Tutor", fields["name"])
	assert.Equal(t, &bio, fields["bio"])
	assert.NotContains(t, fields, "hourly_rate")
	assert.NotContains(t, fields, "last_login")
	assert.NotContains(t, fields, "Internal")
	assert.Equal(t, "user-1", fields[constant.FieldModifiedBy])

	modifiedAt, ok := fields[constant.FieldModifiedAt].(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), modifiedAt, time.Minute)
}

func TestTransformFields_OnlyMetadata(t *testing.T) {
	fields := shared.TransformFields(profileUpdate{}, "user-2")

	assert.Len(t, fields, 2)
	assert.Equal(t, "user-2", fields[constant.FieldModifiedBy])
}

func TestFilterByID(t *testing.T) {
	group := shared.FilterByID("b-1", "id", "bookings")

	where, args := group.GetWhereClause()

	assert.Equal(t, "(bookings.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "b-1"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "booking", shared.BuildCacheKey("booking"))
	assert.Equal(t, "booking:b-1", shared.BuildCacheKey("booking", "b-1"))
	assert.Equal(t, "booking:list:u-1", shared.BuildCacheKey("booking", "list", "u-1"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	tutorFilter := shared.FilterByID("t-1", "tutor_id", "bookings")

	first := shared.BuildCacheKeyWithQuery("booking:list", params, tutorFilter)
	second := shared.BuildCacheKeyWithQuery("booking:list", params, tutorFilter)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "booking:list:"))

	params.Page = 2
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery("booking:list", params, tutorFilter))
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery("booking:list", dto.QueryParams{Page: 1, Limit: 10}, shared.FilterByID("t-2", "tutor_id", "bookings")))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	redisCache.EXPECT().Clear(gomock.Any(), "booking:"+constant.Asterix).Return(nil)
	shared.InvalidateCaches(context.Background(), redisCache, "booking:")

	redisCache.EXPECT().Clear(gomock.Any(), "user:"+constant.Asterix).Return(errors.New("redis unavailable"))
	shared.InvalidateCaches(context.Background(), redisCache, "user:")
}
