package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, Config{Level: LevelInfo, Format: "json"})

	Debug("hidden")
	Info("meal logged", "calories", 520)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "meal logged", entry["msg"])
	assert.Equal(t, float64(520), entry["calories"])
}

func TestInitWithConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	require.NoError(t, InitWithConfig(Config{Level: LevelDebug, OutputPath: path, Format: "text"}))
	Info("hello")
	assert.FileExists(t, path)
	require.NoError(t, Close())
	require.NoError(t, Close())
}

func TestWithContextWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, Config{Level: LevelInfo, Format: "json"})

	WithContext(context.Background()).Info("plain")
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "***4567", MaskPhone("+905551234567"))
	assert.Equal(t, "***", MaskPhone("123"))
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "error", LevelError.String())
}
