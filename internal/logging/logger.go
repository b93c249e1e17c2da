package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Logger is a minimal structured logger facade over slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type slogLogger struct{ l *slog.Logger }

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// New creates a text-handler logger writing to w, tagged with a fresh run id
// so concurrent worker records from one invocation can be grouped.
func New(w io.Writer, level slog.Leveler) Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &slogLogger{l: slog.New(h).With("run", uuid.NewString()[:8])}
}

// ForRun returns a stderr logger at debug or info level depending on the
// debug toggle.
func ForRun(debug bool) Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return New(os.Stderr, level)
}

// Timed logs the elapsed time of a phase at debug level. Use with defer:
//
//	defer logging.Timed(log, "status")()
func Timed(log Logger, phase string) func() {
	start := time.Now()
	return func() {
		log.Debug("phase done", "phase", phase, "elapsed", time.Since(start).Round(time.Millisecond))
	}
}

// Nop returns a no-op logger.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
