package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestStopwatch(t *testing.T) {
	var buf bytes.Buffer
	w := startStopwatch(newLogger(&buf, log.InfoLevel))
	w.now = func() time.Time { return w.start.Add(1234567 * time.Microsecond) }
	w.done("Rendered 80x80 frame")

	if out := buf.String(); !strings.Contains(out, "Rendered 80x80 frame (1.235s)") {
		t.Errorf("stopwatch output = %q", out)
	}
}

func TestStopwatchQuietAboveInfo(t *testing.T) {
	var buf bytes.Buffer
	startStopwatch(newLogger(&buf, log.WarnLevel)).done("Rendered 8x8 frame")
	if buf.Len() != 0 {
		t.Errorf("stopwatch logged at warn level: %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}
