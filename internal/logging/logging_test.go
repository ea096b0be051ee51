package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "json", slog.LevelInfo).Info("ingested runs", "count", 3)
	assert.Contains(t, buf.String(), `"msg":"ingested runs"`)
	assert.Contains(t, buf.String(), `"count":3`)

	buf.Reset()
	New(&buf, "text", slog.LevelWarn).Info("hidden")
	assert.Empty(t, buf.String())
}
