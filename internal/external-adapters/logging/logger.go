// Package logging adapts sirupsen/logrus to the domain Logger interface.
package logging

import (
	"io"

	"github.com/ochairo/sbomlicenses/internal/domain/interfaces"
	"github.com/sirupsen/logrus"
)

// Logger implements interfaces.Logger on top of a logrus entry
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger writing text output to w at the given level.
// Unknown level names fall back to info.
func New(w io.Writer, level string) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	return &Logger{entry: logrus.NewEntry(base)}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	l.withFields(fields).Debug(msg)
}

// Info logs an informational message
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	l.withFields(fields).Info(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	l.withFields(fields).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	l.withFields(fields).Error(msg)
}

// With returns a logger that always carries the given fields
func (l *Logger) With(fields ...interfaces.Field) interfaces.Logger {
	return &Logger{entry: l.withFields(fields)}
}

func (l *Logger) withFields(fields []interfaces.Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return l.entry.WithFields(data)
}
