package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"tutorhub/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request", err: failure.BadRequest(errors.New("invalid date format")), code: http.StatusBadRequest, message: "invalid date format"},
		{name: "bad request from string", err: failure.BadRequestFromString("cannot book yourself"), code: http.StatusBadRequest, message: "cannot book yourself"},
		{name: "unauthorized", err: failure.Unauthorized("invalid email or password"), code: http.StatusUnauthorized, message: "invalid email or password"},
		{name: "forbidden", err: failure.Forbidden("you are not a participant of this booking"), code: http.StatusForbidden, message: "you are not a participant of this booking"},
		{name: "not found", err: failure.NotFound("booking not found"), code: http.StatusNotFound, message: "booking not found"},
		{name: "conflict", err: failure.Conflict("slot conflict"), code: http.StatusConflict, message: "slot conflict"},
		{name: "forbidden error", err: failure.ForbiddenError, code: http.StatusForbidden, message: failure.ForbiddenError.Message},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fail *failure.Failure
			require.ErrorAs(t, tt.err, &fail)

			assert.Equal(t, tt.code, fail.Code)
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestBadRequest_Nil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "failure", err: failure.Conflict("slot conflict"), expected: http.StatusConflict},
		{name: "wrapped failure", err: fmt.Errorf("create booking: %w", failure.NotFound("tutor not found")), expected: http.StatusNotFound},
		{name: "joined failure", err: errors.Join(errors.New("sink offline"), failure.Forbidden("nope")), expected: http.StatusForbidden},
		{name: "plain error", err: errors.New("connection reset"), expected: http.StatusInternalServerError},
		{name: "nil", err: nil, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, failure.GetCode(tt.err))
		})
	}
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("update booking: %w", failure.Conflict("tutor is not available at this time"))

	assert.True(t, failure.Is(wrapped, http.StatusConflict))
	assert.False(t, failure.Is(wrapped, http.StatusNotFound))
	assert.False(t, failure.Is(errors.New("plain"), http.StatusInternalServerError))
	assert.False(t, failure.Is(nil, http.StatusConflict))
}

func TestGetMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "failure", err: failure.Forbidden("not a participant"), expected: "not a participant"},
		{name: "wrapped failure", err: fmt.Errorf("update: %w", failure.Forbidden("not a participant")), expected: "not a participant"},
		{name: "plain error", err: fmt.Errorf("get: %w", errors.New("connection reset")), expected: "get: connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, failure.GetMessage(tt.err))
		})
	}
}
