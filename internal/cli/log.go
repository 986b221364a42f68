// Package cli implements the mandelscope command-line interface.
//
// # Commands
//
//   - render: compute one frame and print it as terminal half-blocks
//   - explore: zoom around interactively in the terminal
//   - serve: run the HTTP and websocket API
//   - gradients: list the color gradients
//   - cache: inspect or clear the buffer cache
//
// # Logging
//
// Every command accepts --verbose (-v) for debug output. Commands read their
// logger from the command context, which the root pre-run populates.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat prints wall-clock time to the hundredth of a second.
const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// stopwatch logs how long a compute took once it finishes.
type stopwatch struct {
	logger *log.Logger
	now    func() time.Time
	start  time.Time
}

func startStopwatch(l *log.Logger) *stopwatch {
	return &stopwatch{logger: l, now: time.Now, start: time.Now()}
}

// elapsed is rounded to milliseconds.
func (s *stopwatch) elapsed() time.Duration {
	return s.now().Sub(s.start).Round(time.Millisecond)
}

// done logs msg at info level with the elapsed time appended in parentheses.
func (s *stopwatch) done(msg string) {
	s.logger.Infof("%s (%s)", msg, s.elapsed())
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default when ctx carries no logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
