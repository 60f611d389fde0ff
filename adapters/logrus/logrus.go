package logrusadapter

import (
	"github.com/sirupsen/logrus"

	windowlimiter "github.com/windowlimit/go-window-limiter"
)

// LogrusLogger implements windowlimiter.Logger using logrus
type LogrusLogger struct {
	logger *logrus.Entry
}

var _ windowlimiter.Logger = (*LogrusLogger)(nil)

// New creates a new LogrusLogger. If nil is passed, uses the standard logger.
func New(l *logrus.Logger) *LogrusLogger {
	if l == nil {
		l = logrus.New()
	}
	return &LogrusLogger{
		logger: logrus.NewEntry(l),
	}
}

// Debugf logs a debug-level message
func (l *LogrusLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// Errorf logs an error-level message
func (l *LogrusLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}
