package epdmock

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards all log records. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the package-wide logger used when Opts.Logger is nil.
// By default epdmock produces no log output. Pass nil to restore that.
//
// Log levels used by epdmock:
//   - [slog.LevelDebug]: per-frame timings, panel refresh regions
//   - [slog.LevelInfo]: session lifecycle (start, pause, resume, stop)
//   - [slog.LevelWarn]: bitmap load failures
//   - [slog.LevelError]: render routine failures
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the package-wide logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
