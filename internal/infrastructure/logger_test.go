package infrastructure

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"nnogcli/internal/config"
)

func testLoggingConfig(output, filePath string) config.LoggingConfig {
	return config.LoggingConfig{Level: "info", Output: output, FilePath: filePath}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "ERROR", want: slog.LevelError},
		{input: "unknown", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.input), "level %q", tt.input)
	}
}

func TestCreateLoggerConsoleOnly(t *testing.T) {
	logger, err := createLogger(testLoggingConfig("console", ""))
	assert.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestCreateLoggerFile(t *testing.T) {
	path := t.TempDir() + "/logs/refund.log"

	logger, err := createLogger(testLoggingConfig("file", path))
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	logger.Info("probe")
	assert.NoError(t, CloseLogFile())
}
