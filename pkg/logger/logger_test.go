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

func TestQueueRecordFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Error("Sync halted", RecordID("r1"), Tag("assets"), ErrorField(errors.New("boom")))
	WithFields(String("component", "sync")).Info("Sync completed", Int("applied", 3))

	entries := logs.All()
	require.Len(t, entries, 2)

	halted := entries[0].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "r1", halted["record_id"])
	assert.Equal(t, "assets", halted["tag"])
	assert.Equal(t, "boom", halted["error"])

	completed := entries[1].ContextMap()
	assert.Equal(t, "sync", completed["component"])
	assert.EqualValues(t, 3, completed["applied"])
}

func TestDebugFilteredByLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Debug("noise")
	Warn("kept", Bool("connected", false))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}
