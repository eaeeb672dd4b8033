package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for input, expected := range tests {
		assert.Equal(t, expected, ParseLevel(input), "level %q", input)
	}
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"component": "engine"}).
		Named("analyzer").
		Info("analysis complete", map[string]interface{}{
			"source": "scenario",
			"cause":  errors.New("none"),
		})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "analysis complete", entry.Message)
	assert.Equal(t, "analyzer", entry.LoggerName)

	ctx := entry.ContextMap()
	assert.Equal(t, "engine", ctx["component"])
	assert.Equal(t, "scenario", ctx["source"])
	assert.Equal(t, "none", ctx["cause"])
}

func TestZapWrapper_WithError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithError(errors.New("upstream down")).Warn("live call failed", nil)
	log.Debug("filtered out", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "upstream down", logs.All()[0].ContextMap()["error"])
}

func TestNew_BuildsForBothFormats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := New(Options{Level: "debug", Format: format, Output: "stderr"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	}
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	log.Error("ignored", map[string]interface{}{"k": "v"})
	assert.NotNil(t, log.WithFields(nil))
}
