package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevel(t *testing.T) {
	l := NewLogger("debug")
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l = NewLogger("not-a-level")
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestWithKeepsWrapper(t *testing.T) {
	l := NewNop().With()
	assert.NotNil(t, l.Logger)
}
