package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"tutorhub/config"
	"tutorhub/shared/constant"
	"tutorhub/shared/logger"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restore(t *testing.T) {
	t.Helper()

	original := log.Logger
	level := zerolog.GlobalLevel()

	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(level)
	})
}

func testConfig(env, level string) *config.Config {
	cfg := &config.Config{}
	cfg.Server.Env = env
	cfg.Server.LogLevel = level
	cfg.App.Name = "tutorhub"

	return cfg
}

func TestSetup_JSONOutsideDevelopment(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	logger.Setup(testConfig("production", "info"), &buf)

	buf.Reset()
	log.Info().Str("booking_id", "b-1").Msg("booking confirmed")

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tutorhub", entry["app"])
	assert.Equal(t, "b-1", entry["booking_id"])
	assert.Equal(t, "booking confirmed", entry["message"])
}

func TestSetup_ConsoleInDevelopment(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	logger.Setup(testConfig(constant.ServerEnvDevelopment, "debug"), &buf)

	buf.Reset()
	log.Info().Msg("reminder sweep finished")

	assert.Contains(t, buf.String(), "reminder sweep finished")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestSetup_Level(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{name: "debug", level: "debug", expected: zerolog.DebugLevel},
		{name: "warn", level: "warn", expected: zerolog.WarnLevel},
		{name: "empty falls back to info", level: "", expected: zerolog.InfoLevel},
		{name: "unknown falls back to info", level: "verbose", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore(t)

			var buf bytes.Buffer
			logger.Setup(testConfig("production", tt.level), &buf)

			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestErrorWithStack(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	logger.Setup(testConfig("production", "error"), &buf)

	logger.ErrorWithStack(errors.New("failed to insert booking"))

	assert.Contains(t, buf.String(), "failed to insert booking")
	assert.Contains(t, buf.String(), `"level":"error"`)
}
