package log

import (
	"io"
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
)

var (
	mu          sync.RWMutex
	verbose     = false
	disableLogs = false
	forceStdErr = false

	stdout = newLogger(os.Stdout)
	stderr = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           charmlog.InfoLevel,
	})
}

// SetVerbose sets the logging verbosity. If true, debug messages are displayed.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()

	verbose = v
	level := charmlog.InfoLevel
	if v {
		level = charmlog.DebugLevel
	}
	stdout.SetLevel(level)
	stderr.SetLevel(level)
}

// IsVerbose returns true if verbose logging is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetForceStdErr sends every level to stderr. The dump command uses it to
// keep stdout clean for JSON.
func SetForceStdErr(v bool) {
	mu.Lock()
	defer mu.Unlock()
	forceStdErr = v
}

// DisableLogs disables all logging.
func DisableLogs() {
	mu.Lock()
	defer mu.Unlock()
	disableLogs = true
}

// IsDisabled returns true if logging is disabled.
func IsDisabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return disableLogs
}

// Debugf logs a debug message if verbose is true.
func Debugf(format string, args ...interface{}) {
	if l := pick(false); l != nil {
		l.Debugf(format, args...)
	}
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	if l := pick(false); l != nil {
		l.Infof(format, args...)
	}
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	if l := pick(false); l != nil {
		l.Warnf(format, args...)
	}
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	if l := pick(true); l != nil {
		l.Errorf(format, args...)
	}
}

// Fatalf logs an error message and exits the program.
func Fatalf(format string, args ...interface{}) {
	if l := pick(true); l != nil {
		l.Errorf(format, args...)
	}
	os.Exit(1)
}

// With returns a logger carrying the given key/value pairs, for call sites
// that log structured fields (the HTTP access log, for one).
func With(keyvals ...interface{}) *charmlog.Logger {
	l := pick(false)
	if l == nil {
		return charmlog.NewWithOptions(io.Discard, charmlog.Options{})
	}
	return l.With(keyvals...)
}

func pick(isError bool) *charmlog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if disableLogs {
		return nil
	}
	if forceStdErr || isError {
		return stderr
	}
	return stdout
}
