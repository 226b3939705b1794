// Package logging implements the structured logger every layer of the
// engine writes through: a small level-filtered wrapper that emits either
// line or JSON output, the same shape the teacher's internal/pkg/logging
// used, generalized to take the level and format as plain strings instead
// of importing internal/config, so the package has no dependency back on
// the server wiring.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}

type Logger struct {
	level  Level
	format string
	logger *log.Logger
}

type LogEntry struct {
	Timestamp     string                 `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty"`
}

var defaultLogger *Logger

// Init configures the package-level default logger. level/format come from
// config.LoggingConfig but are passed as plain strings to avoid importing
// internal/config here.
func Init(level, format string) {
	defaultLogger = &Logger{
		level:  parseLevel(level),
		format: format,
		logger: log.New(os.Stdout, "", 0),
	}
}

func parseLevel(levelStr string) Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func (l *Logger) log(level Level, message string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	var correlationID string
	if fields != nil {
		if v, ok := fields["correlation_id"]; ok {
			if s, ok := v.(string); ok {
				correlationID = s
				delete(fields, "correlation_id")
			}
		}
	}

	entry := LogEntry{
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Level:         level.String(),
		Message:       message,
		CorrelationID: correlationID,
		Fields:        fields,
	}

	var output string
	if l.format == "json" {
		jsonData, _ := json.Marshal(entry)
		output = string(jsonData)
	} else {
		output = fmt.Sprintf("[%s] %s %s", entry.Timestamp, entry.Level, entry.Message)
		if correlationID != "" {
			output += fmt.Sprintf(" correlation_id=%s", correlationID)
		}
		if len(fields) > 0 {
			fieldsStr, _ := json.Marshal(fields)
			output += fmt.Sprintf(" %s", fieldsStr)
		}
	}

	l.logger.Println(output)
}

func ensureDefault() {
	if defaultLogger == nil {
		defaultLogger = &Logger{level: INFO, format: "text", logger: log.New(os.Stdout, "", 0)}
	}
}

func Debug(message string, fields ...map[string]interface{}) {
	ensureDefault()
	defaultLogger.log(DEBUG, message, firstOrNil(fields))
}

func Info(message string, fields ...map[string]interface{}) {
	ensureDefault()
	defaultLogger.log(INFO, message, firstOrNil(fields))
}

func Warn(message string, fields ...map[string]interface{}) {
	ensureDefault()
	defaultLogger.log(WARN, message, firstOrNil(fields))
}

func Error(message string, err error, fields map[string]interface{}) {
	ensureDefault()
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	defaultLogger.log(ERROR, message, fields)
}

func firstOrNil(fields []map[string]interface{}) map[string]interface{} {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}
