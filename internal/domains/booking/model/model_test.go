package model_test

import (
	"testing"
	"time"
	"tutorhub/internal/domains/booking/model"
	gDto "tutorhub/shared/dto"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []model.Status{model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted}

	allowed := map[model.Status][]model.Status{
		model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
		model.StatusConfirmed: {model.StatusCancelled, model.StatusCompleted},
	}

	for _, from := range all {
		for _, to := range all {
			want := false

			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}

			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, model.StatusCompleted.Valid())
	assert.False(t, model.Status("archived").Valid())
	assert.False(t, model.Status("").Valid())
}

func TestStatus_Active(t *testing.T) {
	assert.True(t, model.StatusPending.Active())
	assert.True(t, model.StatusConfirmed.Active())
	assert.False(t, model.StatusCancelled.Active())
	assert.False(t, model.StatusCompleted.Active())
}

func TestPlatform_Validate(t *testing.T) {
	assert.NoError(t, model.Platform("").Validate(nil))
	assert.NoError(t, model.PlatformTeams.Validate(nil))
	assert.Error(t, model.Platform("Carrier Pigeon").Validate(nil))
}

func TestVideoLink(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		expected string
	}{
		{name: "default base", baseURL: "", expected: "https://meet.jit.si/TutorHub_x"},
		{name: "trailing slash", baseURL: "https://meet.example.com/", expected: "https://meet.example.com/TutorHub_x"},
		{name: "custom base", baseURL: "https://meet.example.com", expected: "https://meet.example.com/TutorHub_x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.VideoLink(tt.baseURL, "TutorHub_x"))
		})
	}
}

func TestBooking_Participants(t *testing.T) {
	b := model.Booking{StudentID: "s", TutorID: "t"}

	assert.True(t, b.IsParticipant("s"))
	assert.True(t, b.IsParticipant("t"))
	assert.False(t, b.IsParticipant("x"))
	assert.False(t, b.IsParticipant(""))
	assert.Equal(t, "t", b.Counterpart("s"))
	assert.Equal(t, "s", b.Counterpart("t"))
	assert.Empty(t, b.Counterpart("x"))
}

func TestBooking_NeedsVideoLink(t *testing.T) {
	b := model.Booking{Platform: model.PlatformJitsi, MeetingID: "TutorHub_x"}
	assert.True(t, b.NeedsVideoLink())

	b.VideoLink = "https://meet.jit.si/TutorHub_x"
	assert.False(t, b.NeedsVideoLink())

	assert.False(t, model.Booking{Platform: model.PlatformZoom, MeetingID: "TutorHub_x"}.NeedsVideoLink())
}

func TestBooking_Hours(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	b := model.Booking{StartTime: start, EndTime: start.Add(90 * time.Minute)}

	assert.InDelta(t, 1.5, b.Hours(), 0.0001)
}

func TestOverlapFilter(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	filter := model.OverlapFilter("tutor", start, end, "")
	assert.Equal(t, gDto.FilterGroupOperatorAnd, filter.Operator)
	assert.Len(t, filter.Filters, 4)

	overlapEnd := filter.Filters[2].(gDto.Filter)
	assert.Equal(t, model.FieldStartTime, overlapEnd.Field)
	assert.Equal(t, gDto.FilterOperatorLess, overlapEnd.Operator)
	assert.Equal(t, end, overlapEnd.Value)

	overlapStart := filter.Filters[3].(gDto.Filter)
	assert.Equal(t, model.FieldEndTime, overlapStart.Field)
	assert.Equal(t, gDto.FilterOperatorGreater, overlapStart.Operator)
	assert.Equal(t, start, overlapStart.Value)

	excluding := model.OverlapFilter("tutor", start, end, "booking")
	assert.Len(t, excluding.Filters, 5)

	exclude := excluding.Filters[4].(gDto.Filter)
	assert.Equal(t, gDto.FilterOperatorNotEq, exclude.Operator)
	assert.Equal(t, "booking", exclude.Value)
}
