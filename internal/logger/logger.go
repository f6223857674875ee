package logger

import (
	"sync"
)

// Level strings accepted in configuration (log.level).
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// DefaultLevel applies when the config names no level, or an unknown one.
// A typo in config must never silence errors.
const DefaultLevel = InfoLevel

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger, initialized on the first call with
// the given level string. Subsequent calls ignore the level and return the
// already initialized instance; use Named to derive component loggers from
// it.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}
