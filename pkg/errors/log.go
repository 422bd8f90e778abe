package errors

import (
	"log/slog"
)

// LogHandler is a Handler that writes reports to a slog.Logger.
type LogHandler struct {
	logger *slog.Logger

	// Verbose attaches stack traces to logged records.
	Verbose bool
}

// NewLogHandler creates a LogHandler writing to logger, or to slog.Default()
// when logger is nil.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

func (h *LogHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// HandleError logs an Error at error level.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if err.Channel != "" {
		attrs = append(attrs, "channel", err.Channel)
	}
	if err.ViewID != 0 {
		attrs = append(attrs, "view", err.ViewID)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.log().Error("mapkit error", attrs...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "value", err.Value}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.log().Error("mapkit panic", attrs...)
}

// HandleBuildError logs a BuildError at error level.
func (h *LogHandler) HandleBuildError(err *BuildError) {
	if err == nil {
		return
	}
	attrs := []any{"widget", err.Widget, "value", err.Recovered}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.log().Error("mapkit build error", attrs...)
}
