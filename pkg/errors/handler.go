package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	handler   Handler = NewLogHandler(nil)
	handlerMu sync.RWMutex
)

// SetHandler configures the process-wide error handler and returns the
// previous one. Pass nil to restore the default [LogHandler].
func SetHandler(h Handler) Handler {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	prev := handler
	if h == nil {
		handler = NewLogHandler(nil)
	} else {
		handler = h
	}
	return prev
}

// CurrentHandler returns the process-wide error handler.
func CurrentHandler() Handler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// Report sends an error to the process-wide handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *Error) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := CurrentHandler(); h != nil {
		h.HandleError(err)
	}
}

// ReportPanic sends a panic error to the process-wide handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := CurrentHandler(); h != nil {
		h.HandlePanic(err)
	}
}

// ReportBuildError sends a build error to the process-wide handler.
func ReportBuildError(err *BuildError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := CurrentHandler(); h != nil {
		h.HandleBuildError(err)
	}
}

// Recover is a helper for deferred panic recovery.
// Usage: defer errors.Recover("operation.name")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
			Timestamp:  time.Now(),
		})
	}
}

// Swallow recovers a panic without reporting it. Teardown paths use it so
// that a failing native detach never interrupts disposal.
// Usage: defer errors.Swallow()
func Swallow() {
	_ = recover()
}

// CaptureStack returns the current call stack as a string, skipping
// CaptureStack and its caller's deferred frame.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteString("\n")
		if !more {
			break
		}
	}
	return sb.String()
}
