// Package errors provides structured error reporting for mapkit.
//
// Errors that cannot be returned to a caller (failures inside asynchronous
// widget continuations, native event parsing, teardown) are sent to a single
// process-wide [Handler]. The default handler logs through log/slog.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPlatform indicates a platform channel or native bridge error.
	KindPlatform
	// KindParsing indicates a native payload could not be parsed.
	KindParsing
	// KindInit indicates a widget failed to bootstrap (engine load, map construction).
	KindInit
	// KindGeocode indicates a geocoding transport or engine failure.
	KindGeocode
	// KindTeardown indicates a failure while releasing native resources.
	KindTeardown
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindBuild indicates a build-time widget error.
	KindBuild
)

func (k ErrorKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindParsing:
		return "parsing"
	case KindInit:
		return "init"
	case KindGeocode:
		return "geocode"
	case KindTeardown:
		return "teardown"
	case KindPanic:
		return "panic"
	case KindBuild:
		return "build"
	default:
		return "unknown"
	}
}

// Error is a structured error reported by mapkit.
type Error struct {
	// Op is the operation that failed (e.g., "amap.Orchestrator.load").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Channel is the platform channel name, if applicable.
	Channel string
	// ViewID is the platform view involved, or 0.
	ViewID int64
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	switch {
	case e.Channel != "" && e.ViewID != 0:
		return fmt.Sprintf("%s [%s] channel=%s view=%d: %v", e.Op, e.Kind, e.Channel, e.ViewID, e.Err)
	case e.Channel != "":
		return fmt.Sprintf("%s [%s] channel=%s: %v", e.Op, e.Kind, e.Channel, e.Err)
	case e.ViewID != 0:
		return fmt.Sprintf("%s [%s] view=%d: %v", e.Op, e.Kind, e.ViewID, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked.
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to parse a native payload.
type ParseError struct {
	// Channel is the platform channel that delivered the payload.
	Channel string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from channel %s: got %T", e.DataType, e.Channel, e.Got)
}

// BuildError represents a failure during widget build.
type BuildError struct {
	// Widget is the type name of the widget that failed.
	Widget string
	// Recovered is the panic value.
	Recovered any
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Build(): %v", e.Widget, e.Recovered)
	}
	return fmt.Sprintf("unknown error in %s.Build()", e.Widget)
}

// Handler receives errors reported by mapkit.
type Handler interface {
	// HandleError is called when an error is reported.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a widget build fails.
	HandleBuildError(err *BuildError)
}
