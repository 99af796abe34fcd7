// internal/observability/logger_test.go
package observability

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/codetriage/internal/config"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// The logger is a global singleton, so every test must reset it first.

func TestInitializeConsoleLogger(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &zaptest.Buffer{}
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "test-service",
	}, sink)

	logger := GetLogger()
	logger.Info("console smoke test")
	require.NoError(t, logger.Sync())

	output := sink.String()
	assert.Contains(t, output, "INFO")
	assert.Contains(t, output, "console smoke test")
	assert.Contains(t, output, "test-service.")
}

func TestInitializeJSONLogger(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &zaptest.Buffer{}
	Initialize(config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "test-service",
	}, sink)

	GetLogger().Warn("structured smoke test")

	lines := sink.Lines()
	require.NotEmpty(t, lines)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "structured smoke test", entry["msg"])
}

func TestInitializeRespectsLevel(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &zaptest.Buffer{}
	Initialize(config.LoggerConfig{
		Level:       "error",
		Format:      "json",
		ServiceName: "test-service",
	}, sink)

	GetLogger().Info("should be suppressed")
	assert.Empty(t, strings.TrimSpace(sink.String()))
}

func TestInitializeInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &zaptest.Buffer{}
	Initialize(config.LoggerConfig{
		Level:       "chatty",
		Format:      "json",
		ServiceName: "test-service",
	}, sink)

	GetLogger().Debug("below info, suppressed")
	GetLogger().Info("at info, emitted")

	output := sink.String()
	assert.NotContains(t, output, "below info")
	assert.Contains(t, output, "at info")
}

func TestGetLoggerFallbackBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	// The fallback must be usable even though Initialize never ran.
	logger.Debug("fallback logger is alive")
}

var _ zapcore.WriteSyncer = (*zaptest.Buffer)(nil)
