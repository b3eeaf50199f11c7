package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Logger wraps logrus with printf-style level methods
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger writing to stdout at the given level.
// Unknown levels fall back to info.
func NewLogger(level string) *Logger {
	return NewLoggerWithOutput(os.Stdout, level)
}

// NewLoggerWithOutput creates a logger writing to w.
func NewLoggerWithOutput(w io.Writer, level string) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	return &Logger{entry: logrus.NewEntry(base)}
}

// Named returns a child logger whose lines carry the given component prefix.
func (l *Logger) Named(prefix string) *Logger {
	return &Logger{entry: l.entry.WithField("prefix", prefix)}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.entry.Warnf(msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}
