package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipmunk/internal/logging"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, logging.FormatText, logging.ParseFormat("TINT"))
	assert.Equal(t, logging.FormatJSON, logging.ParseFormat("json"))
	assert.Equal(t, logging.FormatAuto, logging.ParseFormat("whatever"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warn", slog.LevelInfo))
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("", slog.LevelDebug))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("loud", slog.LevelInfo))
}

func TestNewHandlerJSONForNonTTY(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logging.NewHandler(&buf, logging.FormatAuto, slog.LevelInfo))
	log.Debug("hidden")
	log.Info("templates synced", "keys", []string{"paste_template_0"})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "templates synced", rec["msg"])
}
