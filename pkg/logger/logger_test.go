package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskingHandler_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil)))

	log.With(slog.String("authorization", "Bearer abc")).Info("otp sent",
		slog.String("email", "a@x.io"),
		slog.String("otp", "123456"),
		slog.Group("req", slog.String("token", "jwt")),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "a@x.io", entry["email"])
	assert.Equal(t, "***", entry["otp"])
	assert.Equal(t, "***", entry["authorization"])
	assert.Equal(t, "***", entry["req"].(map[string]any)["token"])
}

func TestTeeHandler_RespectsLevels(t *testing.T) {
	var all, errorsOnly bytes.Buffer
	log := slog.New(newTeeHandler(
		slog.NewJSONHandler(&all, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&errorsOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	log.Info("hello")
	log.Error("boom")

	assert.Equal(t, 2, bytes.Count(all.Bytes(), []byte("\n")))
	assert.Equal(t, 1, bytes.Count(errorsOnly.Bytes(), []byte("\n")))
	assert.Contains(t, errorsOnly.String(), "boom")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
