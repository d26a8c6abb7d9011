// Package log holds the process-wide logger. Library packages log through the
// helpers here so the CLI can redirect or silence them in one place.
package log

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "patches",
	Level:  log.WarnLevel,
})

// Set replaces the process-wide logger.
func Set(l *log.Logger) {
	logger = l
}

func Get() *log.Logger {
	return logger
}

// SetDebug toggles debug output on the current logger.
func SetDebug(debug bool) {
	if debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportTimestamp(true)
		return
	}
	logger.SetLevel(log.WarnLevel)
}

func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func Debug(msg string, keyvals ...any) {
	logger.Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	logger.Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	logger.Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	logger.Error(msg, keyvals...)
}
