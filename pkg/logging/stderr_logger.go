package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// StdErrLogger writes through charmbracelet/log. Modules own stdout for their
// JSON result, so this logger is always pointed at stderr or a test buffer.
type StdErrLogger struct {
	logger *log.Logger
}

var _ Logger = (*StdErrLogger)(nil)

// New returns a logger writing to w. With debug set, Debug lines are emitted.
func New(w io.Writer, prefix string, debug bool) *StdErrLogger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
	})
	return &StdErrLogger{logger: logger}
}

func (l *StdErrLogger) Info(msg string, args ...interface{}) {
	l.logger.Info(msg, args...)
}

func (l *StdErrLogger) Debug(msg string, args ...interface{}) {
	l.logger.Debug(msg, args...)
}

func (l *StdErrLogger) Warn(msg string, args ...interface{}) {
	l.logger.Warn(msg, args...)
}

func (l *StdErrLogger) Error(msg string, args ...interface{}) {
	l.logger.Error(msg, args...)
}
