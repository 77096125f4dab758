// Package logging provides the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log source tags used in structured logger contexts.
const (
	SourceApp    = "app"
	SourceCLI    = "cli"
	SourceEngine = "engine"
	SourceCache  = "cache"
)

var (
	initOnce   sync.Once
	baseLogger *log.Logger
)

// Init configures the base logger. Only the first call takes effect.
func Init(w io.Writer, level log.Level) {
	initOnce.Do(func() {
		baseLogger = log.NewWithOptions(w, log.Options{
			TimeFunction:    log.NowUTC,
			TimeFormat:      time.RFC3339,
			Level:           level,
			ReportTimestamp: true,
			Formatter:       log.LogfmtFormatter,
		})
	})
}

// SetLevel changes the level of the base logger. Loggers obtained
// afterwards inherit it.
func SetLevel(level log.Level) {
	Init(os.Stderr, log.InfoLevel)
	baseLogger.SetLevel(level)
}

// ParseLevel parses a level name, defaulting to info for "".
func ParseLevel(s string) (log.Level, error) {
	if s == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(s)
}

// Logger returns a logfmt logger tagged with the provided source.
func Logger(source string) *log.Logger {
	Init(os.Stderr, log.InfoLevel)
	return baseLogger.With("source", source)
}

// Discard returns a logger that drops everything, for tests and library callers.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
