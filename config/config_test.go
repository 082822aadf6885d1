package config_test

import (
	"testing"
	"tutorhub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://meet.jit.si", cfg.App.Meeting.BaseURL)
	assert.Equal(t, "TutorHub_", cfg.App.Meeting.Prefix)
	assert.Equal(t, "@every 1m", cfg.Reminder.Schedule)
	assert.Equal(t, "booking-events", cfg.Kafka.Topics.BookingEvents)
	assert.Equal(t, "5432", cfg.DB.Postgres.Write.Port)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DB_POSTGRES_WRITE_HOST", "db.internal")
	t.Setenv("APP_RATE_LIMITER_MAX_REQUESTS", "30")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("REMINDER_ENABLE", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Postgres.Write.Host)
	assert.Equal(t, 30, cfg.App.RateLimiter.MaxRequests)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Reminder.Enable)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CACHE_TTL", "forever")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestGet_Singleton(t *testing.T) {
	assert.Same(t, config.Get(), config.Get())
}
