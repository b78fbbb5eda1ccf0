package rest

import (
	"io"
	"os"

	"github.com/fivetwenty-io/restverb/internal/constants"
	"github.com/sirupsen/logrus"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// LogrusLogger adapts a logrus logger to Logger.
type LogrusLogger struct {
	logger *logrus.Logger
}

// NewLogrusLogger writes text logs to stderr at the level selected by
// verbosity (0 error, 1 warn, 2 info, 3 debug).
func NewLogrusLogger(verbosity int) *LogrusLogger {
	return NewLogrusLoggerWithOutput(verbosity, os.Stderr)
}

// NewLogrusLoggerWithOutput is NewLogrusLogger with a custom sink.
func NewLogrusLoggerWithOutput(verbosity int, out io.Writer) *LogrusLogger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(LevelForVerbosity(verbosity))
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &LogrusLogger{logger: logger}
}

// LevelForVerbosity maps a verbosity count to a logrus level.
func LevelForVerbosity(verbosity int) logrus.Level {
	switch {
	case verbosity <= constants.VerbosityError:
		return logrus.ErrorLevel
	case verbosity == constants.VerbosityWarn:
		return logrus.WarnLevel
	case verbosity == constants.VerbosityInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// Debug implements Logger.
func (l *LogrusLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Debug(msg)
}

// Info implements Logger.
func (l *LogrusLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Info(msg)
}

// Warn implements Logger.
func (l *LogrusLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Warn(msg)
}

// Error implements Logger.
func (l *LogrusLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Error(msg)
}
