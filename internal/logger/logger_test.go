package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	require.NoError(t, Init(Options{Enabled: false}))
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestInit_TextLevel(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Level: slog.LevelWarn, Output: &out}))
	t.Cleanup(func() { _ = Init(Options{}) })

	Info("ignored")
	Warn("disk almost full", "free", 3)

	assert.NotContains(t, out.String(), "ignored")
	assert.Contains(t, out.String(), `msg="disk almost full" free=3`)
}

func TestInit_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pagectl.log")
	require.NoError(t, Init(Options{Enabled: true, JSON: true, Level: slog.LevelDebug, File: path}))

	Debug("grew page file", "pages", 8)
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "grew page file", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.EqualValues(t, 8, rec["pages"])

	// logging after Close is discarded, not an error
	Error("after close")
}
