// Package logging holds the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "caliper",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// Logger returns the process logger.
func Logger() *log.Logger {
	return get()
}

// SetLevel parses and applies a level name (debug, info, warn, error).
func SetLevel(level string) error {
	l, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	get().SetLevel(l)
	return nil
}

// SetOutput redirects the logger, mostly for tests.
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// With returns a child logger carrying keyvals on every entry.
func With(keyvals ...interface{}) *log.Logger {
	return get().With(keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	get().Helper()
	get().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	get().Helper()
	get().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	get().Helper()
	get().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	get().Helper()
	get().Error(msg, keyvals...)
}
