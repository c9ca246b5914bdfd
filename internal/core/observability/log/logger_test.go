package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core), level), logs
}

func TestLoggerFields(t *testing.T) {
	l, logs := observed(LevelDebug)
	l.With(String("component", "board")).Info("piece placed",
		String("piece", "T1"),
		Int("count", 3),
		Float64("x", 1.5),
		Bool("snapped", true),
		Duration("took", time.Millisecond),
		Error(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "piece placed", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "board", ctx["component"])
	assert.Equal(t, "T1", ctx["piece"])
	assert.Equal(t, int64(3), ctx["count"])
	assert.Equal(t, 1.5, ctx["x"])
	assert.Equal(t, true, ctx["snapped"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLoggerLevel(t *testing.T) {
	l, logs := observed(LevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, LevelWarn, l.GetLevel())

	child := l.With(String("k", "v"))
	l.SetLevel(LevelDebug)
	child.Debug("now shown")
	assert.Equal(t, 2, logs.Len())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug": LevelDebug,
		"":      LevelInfo,
		"INFO":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "warn", LevelWarn.String())
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error("dropped")
	assert.NotNil(t, Provide())
}
