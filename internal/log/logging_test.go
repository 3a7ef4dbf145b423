package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestTraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(textHandler(&buf, LevelTrace))

	logger.Log(context.Background(), LevelTrace, "raw frame")
	assert.Contains(t, buf.String(), "level=TRACE")

	buf.Reset()
	logger.Info("hello")
	assert.Contains(t, buf.String(), "level=INFO")
}

func TestLevelFilterAndMultiHandler(t *testing.T) {
	var low, high bytes.Buffer
	handler := MultiHandler{hs: []slog.Handler{
		LevelFilter{
			pass: func(l slog.Level) bool { return l < slog.LevelError },
			h:    slog.NewTextHandler(&low, &slog.HandlerOptions{Level: slog.LevelDebug}),
		},
		LevelFilter{
			pass: func(l slog.Level) bool { return l >= slog.LevelError },
			h:    slog.NewTextHandler(&high, &slog.HandlerOptions{Level: slog.LevelError}),
		},
	}}
	logger := slog.New(handler)

	logger.Info("routine")
	logger.Error("broken")

	assert.Contains(t, low.String(), "routine")
	assert.NotContains(t, low.String(), "broken")
	assert.Contains(t, high.String(), "broken")
	assert.NotContains(t, high.String(), "routine")
}
