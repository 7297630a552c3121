package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
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
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Fields is a set of structured key/value pairs attached to an entry
type Fields map[string]interface{}

// sink is shared between a logger and the children derived from it so that
// concurrent writers never interleave lines.
type sink struct {
	mu      sync.Mutex
	output  io.Writer
	logFile *os.File
}

// Logger provides leveled, structured logging with optional file output
type Logger struct {
	level      Level
	jsonFormat bool
	sink       *sink
	fields     Fields
	exit       func(int)
}

// NewLogger creates a logger writing to stdout
func NewLogger(level Level, jsonFormat bool) *Logger {
	return &Logger{
		level:      level,
		jsonFormat: jsonFormat,
		sink:       &sink{output: os.Stdout},
		fields:     make(Fields),
		exit:       os.Exit,
	}
}

// NewFileLogger creates a logger that writes to <dir>/vidgen/<component>.log
// as well as stdout.
func NewFileLogger(dir, component string, level Level, jsonFormat bool) (*Logger, error) {
	logDir := filepath.Join(dir, "vidgen")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	logPath := filepath.Join(logDir, component+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	logger := NewLogger(level, jsonFormat)
	logger.sink = &sink{
		output:  io.MultiWriter(logFile, os.Stdout),
		logFile: logFile,
	}
	logger.fields["component"] = component

	logger.Debug("Logger initialized", Fields{"path": logPath})
	return logger, nil
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	l := NewLogger(FATAL+1, false)
	l.sink.output = io.Discard
	return l
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = w
}

// SetConsole redirects the console copy of each entry to w, keeping the log
// file if one is open. io.Discard leaves only the file.
func (l *Logger) SetConsole(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.logFile == nil {
		l.sink.output = w
		return
	}
	if w == io.Discard {
		l.sink.output = l.sink.logFile
		return
	}
	l.sink.output = io.MultiWriter(l.sink.logFile, w)
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
}

func (l *Logger) log(level Level, message string, fields Fields) {
	if level < l.level {
		return
	}

	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		merged[k] = v
	}

	var line string
	if l.jsonFormat {
		entry := LogEntry{
			Timestamp: time.Now().Format(time.RFC3339),
			Level:     level.String(),
			Message:   message,
			Fields:    merged,
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf("Failed to marshal log entry: %v", err)
			return
		}
		line = string(data)
	} else {
		line = fmt.Sprintf("[%s] %s: %s%s", time.Now().Format("2006-01-02 15:04:05"), level.String(), message, formatFields(merged))
	}

	l.sink.mu.Lock()
	fmt.Fprintln(l.sink.output, line)
	l.sink.mu.Unlock()

	if level == FATAL {
		l.exit(1)
	}
}

// formatFields renders fields as " k=v k=v" in key order
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}

func first(fields []Fields) Fields {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields ...Fields) { l.log(DEBUG, message, first(fields)) }

// Info logs an info message
func (l *Logger) Info(message string, fields ...Fields) { l.log(INFO, message, first(fields)) }

// Warn logs a warning message
func (l *Logger) Warn(message string, fields ...Fields) { l.log(WARN, message, first(fields)) }

// Error logs an error message
func (l *Logger) Error(message string, fields ...Fields) { l.log(ERROR, message, first(fields)) }

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(message string, fields ...Fields) { l.log(FATAL, message, first(fields)) }

// WithField returns a child logger carrying an extra field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Fields{key: value})
}

// WithFields returns a child logger carrying extra fields
func (l *Logger) WithFields(fields Fields) *Logger {
	newFields := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	return &Logger{
		level:      l.level,
		jsonFormat: l.jsonFormat,
		sink:       l.sink,
		fields:     newFields,
		exit:       l.exit,
	}
}

// ParseLevel parses a log level string
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// Close closes the log file if opened
func (l *Logger) Close() error {
	if l.sink.logFile == nil {
		return nil
	}
	l.Debug("Logger closing")
	return l.sink.logFile.Close()
}
