package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToZapFieldsTypedValues(t *testing.T) {
	fields := toZapFields([]Field{
		String("company", "VidaCare"),
		Int("age", 34),
		Int64("rows", 120),
		Float64("per_capita", 512.75),
		Bool("expired", false),
		Duration("elapsed", 3*time.Millisecond),
		Err(errors.New("boom")),
	})

	require.Len(t, fields, 7)
	assert.Equal(t, "company", fields[0].Key)
	assert.Equal(t, "error", fields[6].Key)
}

func TestObservedLoggerEmitsFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core)

	log.Info("quote computed",
		String("company", "VidaCare"),
		Int("beneficiaries", 2),
	)

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "quote computed", entries[0].Message)
	assert.Equal(t, "VidaCare", entries[0].ContextMap()["company"])
}

func TestWithAttachesPersistentFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core).With(String("component", "quotation"))

	log.Warn("plan skipped")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "quotation", entries[0].ContextMap()["component"])
}

func TestNewLoggerDefaults(t *testing.T) {
	log, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("anything-else"))
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	// Must not panic and must keep returning a usable logger.
	log.Debug("ignored")
	assert.NotNil(t, log.With(String("k", "v")).Named("child"))
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	SetDefault(nil) // ignored
	assert.NotNil(t, Default())

	core, _ := observer.New(zapcore.InfoLevel)
	replacement := NewLoggerFromCore(core)
	SetDefault(replacement)
	assert.Equal(t, replacement, Default())
}
