package slog

import (
	"bytes"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/synccache"
)

func TestLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo}))}

	l.Debug("dropped", synccache.Fields{"key": "a"})
	l.Warn("error reading session storage key", synccache.Fields{"key": "theme"})

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("debug line emitted: %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "key=theme") {
		t.Fatalf("unexpected output: %s", out)
	}
}
