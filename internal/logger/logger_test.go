package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
	}{
		{name: "JSON output mode", jsonOutput: true},
		{name: "Console output mode", jsonOutput: false, verbosity: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			assert.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)

			Logger = zap.NewNop().Sugar()
		})
	}
}

func TestLevelForVerbosity(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, LevelForVerbosity(-1))
	assert.Equal(t, zapcore.WarnLevel, LevelForVerbosity(0))
	assert.Equal(t, zapcore.InfoLevel, LevelForVerbosity(1))
	assert.Equal(t, zapcore.DebugLevel, LevelForVerbosity(3))
}

func TestHelpersWriteToGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))
	t.Cleanup(func() { Logger = zap.NewNop().Sugar() })

	Debugw("decoded", "path", "a.job")
	Infow("batch done", "files", 3)
	Warnw("skipped", "path", "b.bin")
	Errorw("failed", "path", "c.job")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "decoded", entries[0].Message)
	assert.Equal(t, "a.job", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestHelpersTolerateNilLogger(t *testing.T) {
	Logger = nil
	t.Cleanup(func() { Logger = zap.NewNop().Sugar() })

	assert.NotPanics(t, func() {
		Infow("x")
		Debugw("x")
		Cleanup()
	})
}
