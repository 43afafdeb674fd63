// Package debug provides conditional diagnostic logging for topoview.
//
// Logging is enabled by setting TOPOVIEW_DEBUG or passing --debug:
//
//	TOPOVIEW_DEBUG=1 topoview tables site.xml
//
// The terminal UI draws on stdout, so it routes output to a file with
// ToFile before starting the program. When disabled (default) every
// function is a no-op.
package debug

import (
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultLogFile is the file the TUI logs to when TOPOVIEW_LOG is unset.
const DefaultLogFile = "topoview-debug.log"

var (
	enabled bool
	logger  = newLogger(os.Stderr)
)

func init() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TOPOVIEW_DEBUG"))) {
	case "", "0", "false", "no", "off":
	default:
		enabled = true
	}
}

func newLogger(w io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(log.DebugLevel)
	l.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return l
}

// SetEnabled turns debug logging on or off.
func SetEnabled(e bool) {
	enabled = e
}

// SetOutput redirects the log output.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// ToFile redirects output to path, or to TOPOVIEW_LOG / DefaultLogFile
// when path is empty. The returned func closes the file. It is a no-op
// while logging is disabled.
func ToFile(path string) (func() error, error) {
	if !enabled {
		return func() error { return nil }, nil
	}
	if path == "" {
		path = os.Getenv("TOPOVIEW_LOG")
	}
	if path == "" {
		path = DefaultLogFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(f)
	return f.Close, nil
}

// Log writes a debug message.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Debugf(format, args...)
}

// Warn writes a warning.
func Warn(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Warnf(format, args...)
}

// Error writes an error message.
func Error(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Errorf(format, args...)
}

// LogTiming writes how long name took.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.WithField("took", d).Debug(name)
}

// With logs a message with structured fields.
func With(fields map[string]any, msg string) {
	if !enabled {
		return
	}
	logger.WithFields(log.Fields(fields)).Debug(msg)
}

// LogEnterExit logs entry and exit of name with its duration:
//
//	defer debug.LogEnterExit("load")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Debugf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Debugf("<- %s (%v)", name, time.Since(start))
	}
}
