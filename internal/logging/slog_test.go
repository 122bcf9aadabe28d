package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlog(slog.New(handler))

	logger.Debug("debug msg", "client_id", "tab-a")
	logger.Info("info msg", "count", 3)
	logger.Warn("warn msg")
	logger.Error("error msg", "error", "boom")

	out := buf.String()
	require.Contains(t, out, "debug msg")
	require.Contains(t, out, "client_id=tab-a")
	require.Contains(t, out, "count=3")
	require.Contains(t, out, "warn msg")
	require.Contains(t, out, "error=boom")
	require.Equal(t, 4, strings.Count(out, "\n"))
}

func TestNopLoggerIsSilent(t *testing.T) {
	logger := NewNop()

	// None of these may panic or exit.
	logger.Debug("msg")
	logger.Info("msg", "k", "v")
	logger.Warn("msg")
	logger.Error("msg")
	logger.Fatal("msg")
}
