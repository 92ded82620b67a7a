package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/raffleworks/lottery-service/internal/config"
)

func TestLoggerConfig(t *testing.T) {
	cfg := loggerConfig(config.LoggerConfig{Level: "DEBUG", Encoding: "console"})
	assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())
	assert.Equal(t, "console", cfg.Encoding)
	assert.False(t, cfg.DisableStacktrace)

	cfg = loggerConfig(config.LoggerConfig{Level: "loud", Encoding: "xml"})
	assert.Equal(t, zapcore.InfoLevel, cfg.Level.Level())
	assert.Equal(t, "json", cfg.Encoding)
	assert.True(t, cfg.DisableStacktrace)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "warn"}, "lottery-service")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}
