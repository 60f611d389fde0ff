package zerologadapter

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	windowlimiter "github.com/windowlimit/go-window-limiter"
)

// ZerologLogger implements windowlimiter.Logger using zerolog
type ZerologLogger struct {
	logger zerolog.Logger
}

var _ windowlimiter.Logger = (*ZerologLogger)(nil)

// New creates a new ZerologLogger. If nil is passed, uses zerolog's global logger.
func New(l *zerolog.Logger) *ZerologLogger {
	if l == nil {
		l = &log.Logger
	}
	return &ZerologLogger{
		logger: *l,
	}
}

// Debugf logs a debug-level message
func (z *ZerologLogger) Debugf(format string, args ...interface{}) {
	z.logger.Debug().Msgf(format, args...)
}

// Errorf logs an error-level message
func (z *ZerologLogger) Errorf(format string, args ...interface{}) {
	z.logger.Error().Msgf(format, args...)
}
