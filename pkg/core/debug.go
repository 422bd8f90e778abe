package core

import "sync/atomic"

var debugMode atomic.Bool

// DebugMode reports whether development diagnostics are enabled. Widgets
// use it to gate warnings that must not run in production builds.
func DebugMode() bool {
	return debugMode.Load()
}

// SetDebugMode enables or disables development diagnostics.
func SetDebugMode(debug bool) {
	debugMode.Store(debug)
}
