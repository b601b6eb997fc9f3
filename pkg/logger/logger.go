// Package logger provides structured JSON logging for all services.
package logger

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"
)

type Logger interface {
	Info(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Debug(message string, fields map[string]interface{})
	Fatal(message string, fields map[string]interface{})
}

var levels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
	"fatal": 4,
}

type jsonLogger struct {
	serviceName string
	out         io.Writer
	minLevel    int
}

// New creates a stdout JSON logger. The minimum level is taken from
// LOG_LEVEL (debug|info|warn|error), defaulting to info.
func New(serviceName string) Logger {
	min, ok := levels[strings.ToLower(os.Getenv("LOG_LEVEL"))]
	if !ok {
		min = levels["info"]
	}
	return &jsonLogger{
		serviceName: serviceName,
		out:         os.Stdout,
		minLevel:    min,
	}
}

func (l *jsonLogger) log(level, message string, fields map[string]interface{}) {
	if levels[level] < l.minLevel {
		return
	}

	entry := make(map[string]interface{}, len(fields)+4)
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = level
	entry["service"] = l.serviceName
	entry["message"] = message
	for k, v := range fields {
		entry[k] = v
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.out.Write(append(data, '\n'))
}

func (l *jsonLogger) Info(message string, fields map[string]interface{}) {
	l.log("info", message, fields)
}

func (l *jsonLogger) Error(message string, fields map[string]interface{}) {
	l.log("error", message, fields)
}

func (l *jsonLogger) Warn(message string, fields map[string]interface{}) {
	l.log("warn", message, fields)
}

func (l *jsonLogger) Debug(message string, fields map[string]interface{}) {
	l.log("debug", message, fields)
}

func (l *jsonLogger) Fatal(message string, fields map[string]interface{}) {
	l.log("fatal", message, fields)
	os.Exit(1)
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (l *nopLogger) Info(message string, fields map[string]interface{})  {}
func (l *nopLogger) Error(message string, fields map[string]interface{}) {}
func (l *nopLogger) Warn(message string, fields map[string]interface{})  {}
func (l *nopLogger) Debug(message string, fields map[string]interface{}) {}
func (l *nopLogger) Fatal(message string, fields map[string]interface{}) {}
