package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Defaults(t *testing.T) {
	logger, err := New(Config{})
	require.NoError(t, err)
	defer func() { _ = logger.Sync() }()

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger, err := New(Config{Level: "chatty", Encoding: "xml"})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "introbird.log")

	logger, err := New(Config{Level: "debug", Encoding: "json", OutputPath: path})
	require.NoError(t, err)

	logger.Named("invoker").Warn("Retrying generation", zap.Int("attempt", 1))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"WARN"`)
	assert.Contains(t, string(data), `"logger":"invoker"`)
	assert.Contains(t, string(data), `"attempt":1`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "unchanged", Truncate("unchanged", 0))
	// é is two bytes; the cut backs off to a rune boundary
	assert.Equal(t, "aé...", Truncate("aéé long text", 7))
}
