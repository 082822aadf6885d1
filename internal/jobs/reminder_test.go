package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"
	"tutorhub/config"
	"tutorhub/infras/otel/mocks"
	"tutorhub/internal/jobs"
	"tutorhub/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type senderFunc func(ctx context.Context, now time.Time) (int, error)

func (f senderFunc) SendReminders(ctx context.Context, now time.Time) (int, error) {
	return f(ctx, now)
}

func reminderConfig(enable bool, schedule string) *config.Config {
	cfg := &config.Config{}
	cfg.Reminder.Enable = enable
	cfg.Reminder.Schedule = schedule

	return cfg
}

func TestReminder_RunUsesClock(t *testing.T) {
	at := time.Date(2025, 1, 1, 9, 45, 0, 0, time.UTC)

	var got time.Time

	job := jobs.NewReminder(reminderConfig(true, "@every 1m"), senderFunc(func(ctx context.Context, now time.Time) (int, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)

		got = now

		return 2, nil
	}), &timezone.FixedClock{At: at}, mocks.NewOtel())

	sent, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, at, got)
}

func TestReminder_RunReturnsError(t *testing.T) {
	boom := errors.New("db down")

	job := jobs.NewReminder(reminderConfig(true, "@every 1m"), senderFunc(func(context.Context, time.Time) (int, error) {
		return 0, boom
	}), timezone.NewClock(), mocks.NewOtel())

	_, err := job.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestReminder_Start(t *testing.T) {
	noop := senderFunc(func(context.Context, time.Time) (int, error) { return 0, nil })

	t.Run("disabled", func(t *testing.T) {
		job := jobs.NewReminder(reminderConfig(false, "not a schedule"), noop, timezone.NewClock(), mocks.NewOtel())

		assert.NoError(t, job.Start())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		job := jobs.NewReminder(reminderConfig(true, "not a schedule"), noop, timezone.NewClock(), mocks.NewOtel())

		assert.Error(t, job.Start())
	})

	t.Run("valid schedule", func(t *testing.T) {
		job := jobs.NewReminder(reminderConfig(true, "@every 1h"), noop, timezone.NewClock(), mocks.NewOtel())

		require.NoError(t, job.Start())
		job.Stop()
	})
}
