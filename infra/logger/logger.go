package logger

import corelogger "github.com/kilianp07/rentmatch/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.NopLogger

// New returns a Logger tagged with the given component. Output format and level
// come from the last call to Setup, or from APP_ENV when Setup was never called.
func New(component string) Logger {
	return NewZerologLogger(component)
}
