package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// -----------------------------------------------------------------------------

// Level ordering for filtering
const (
	levelDebug = iota
	levelInfo
	levelWarning
	levelError
)

// Logger provides named, level-filtered logging on top of the stdlib logger
type Logger struct {
	name   string
	level  int
	logger *log.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. logLevel is one of
// DEBUG/INFO/WARNING/ERROR (case-insensitive); anything else means INFO.
func NewLogger(logLevel string, name string) *Logger {
	return &Logger{
		name:   name,
		level:  parseLevel(logLevel),
		logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

// -----------------------------------------------------------------------------

func parseLevel(s string) int {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return levelDebug
	case "WARNING":
		return levelWarning
	case "ERROR":
		return levelError
	default:
		return levelInfo
	}
}

// -----------------------------------------------------------------------------

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level <= levelDebug {
		l.logger.Printf("[%s] DEBUG: %s", l.name, fmt.Sprintf(format, args...))
	}
}

// -----------------------------------------------------------------------------

func (l *Logger) Info(format string, args ...interface{}) {
	if l.level <= levelInfo {
		l.logger.Printf("[%s] INFO: %s", l.name, fmt.Sprintf(format, args...))
	}
}

// -----------------------------------------------------------------------------

func (l *Logger) Warning(format string, args ...interface{}) {
	if l.level <= levelWarning {
		l.logger.Printf("[%s] WARNING: %s", l.name, fmt.Sprintf(format, args...))
	}
}

// -----------------------------------------------------------------------------

func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Printf("[%s] ERROR: %s", l.name, fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.logger.Printf("[%s] CRITICAL: %s", l.name, fmt.Sprintf(format, args...))
	os.Exit(1)
}
