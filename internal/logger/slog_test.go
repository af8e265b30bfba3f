package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/xraph/haulage/internal/logger"
)

func TestHandlerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.InfoLevel)
	l := slog.New(logger.NewHandler(&zl)).With("component", "ledger")

	l.Debug("dropped")
	l.WithGroup("bill").Warn("bill issued",
		"no", "1001",
		"items", 3,
		"took", 2*time.Second,
		"error", errors.New("boom"),
	)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1: %s", len(lines), buf.String())
	}

	var got map[string]any
	if err := json.Unmarshal(lines[0], &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"level":      "warn",
		"message":    "bill issued",
		"component":  "ledger",
		"bill.no":    "1001",
		"bill.items": float64(3),
		"bill.error": "boom",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["bill.took"]; !ok {
		t.Error("duration field missing")
	}
}

func TestHandlerEnabled(t *testing.T) {
	zl := zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel)
	h := logger.NewHandler(&zl)

	cases := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tc := range cases {
		if got := h.Enabled(t.Context(), tc.level); got != tc.want {
			t.Errorf("Enabled(%v) = %v, want %v", tc.level, got, tc.want)
		}
	}
}
