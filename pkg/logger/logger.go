package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"videogen-service/pkg/config"
)

// Logger wraps logrus so the rest of the service only depends on this package.
type Logger struct {
	entry *logrus.Logger
	file  *os.File
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// NewLogger builds a logger from configuration.
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg != nil {
		if parsed, err := logrus.ParseLevel(strings.ToLower(cfg.Log.Level)); err == nil {
			level = parsed
		}
	}
	l.SetLevel(level)

	if cfg != nil && strings.EqualFold(cfg.Log.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	logger := &Logger{entry: l}

	if cfg != nil && strings.EqualFold(cfg.Log.Output, "file") && cfg.Log.Filename != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.Filename), 0o755); err == nil {
			if f, err := os.OpenFile(cfg.Log.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				logger.file = f
				l.SetOutput(io.MultiWriter(os.Stdout, f))
				return logger
			}
		}
		// Fall back to stdout if the log file cannot be opened.
	}
	l.SetOutput(os.Stdout)
	return logger
}

// Close flushes and closes the underlying log file, if any.
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

// SetGlobalLogger installs the process-wide logger.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

func get() *logrus.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger.entry
	}
	return logrus.StandardLogger()
}

// Infof logs at info level with formatting.
func Infof(format string, args ...interface{}) {
	get().Infof(format, args...)
}

// Warnf logs at warn level with formatting.
func Warnf(format string, args ...interface{}) {
	get().Warnf(format, args...)
}

// Errorf logs at error level with formatting.
func Errorf(format string, args ...interface{}) {
	get().Errorf(format, args...)
}

// Debugf logs at debug level with formatting.
func Debugf(format string, args ...interface{}) {
	get().Debugf(format, args...)
}

// Debug logs a message with structured fields at debug level.
func Debug(msg string, fields map[string]interface{}) {
	get().WithFields(fields).Debug(msg)
}

// Info logs a message with structured fields at info level.
func Info(msg string, fields map[string]interface{}) {
	get().WithFields(fields).Info(msg)
}

// Error logs a message with structured fields at error level.
func Error(msg string, fields map[string]interface{}) {
	get().WithFields(fields).Error(msg)
}

// Fatal logs the message and exits.
func Fatal(msg string) {
	get().Fatal(msg)
}

// Fatalf logs a formatted message and exits.
func Fatalf(format string, args ...interface{}) {
	get().Fatal(fmt.Sprintf(format, args...))
}
