package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"nonsense", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(tt.level)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.want-1))
			}
			assert.Same(t, l, InfoLogger)
		})
	}
}

func TestSetServiceName(t *testing.T) {
	old := SetServiceName("mt5-test")
	defer SetServiceName(old)
	assert.Equal(t, "mt5-test", SetServiceName("mt5-test"))
}

func TestError_UsesGlobalLogger(t *testing.T) {
	_, err := New("error")
	require.NoError(t, err)
	assert.NotPanics(t, func() { Error("close tracer: %v", "boom") })
}
