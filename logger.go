package voiceagent

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	// LogLevelDebug logs everything including detailed debugging information
	LogLevelDebug LogLevel = iota
	// LogLevelInfo logs informational messages and above
	LogLevelInfo
	// LogLevelWarn logs warnings and above
	LogLevelWarn
	// LogLevelError logs only errors
	LogLevelError
	// LogLevelOff disables all logging
	LogLevelOff
)

// String returns the string representation of a LogLevel
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel converts a string to LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LogLevelDebug
	case "INFO":
		return LogLevelInfo
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	case "OFF":
		return LogLevelOff
	default:
		return LogLevelInfo
	}
}

// sink receives formatted log records. The default sink writes key=value
// text to stderr; FileSink writes JSON lines to a daily-rotated file.
type sink interface {
	write(level LogLevel, event string, fields map[string]any)
}

// Logger provides structured logging with configurable levels.
type Logger struct {
	level LogLevel
	sinks []sink
}

// NewLogger creates a logger writing key=value text to stderr.
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level, sinks: []sink{newTextSink("[voiceagent]")}}
}

// NewLoggerFromEnv creates a logger with level from VOICEAGENT_LOG_LEVEL.
func NewLoggerFromEnv() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("VOICEAGENT_LOG_LEVEL")))
}

// NewFileLogger creates a logger that writes JSON lines to a daily-rotated
// file under dir (one file per day, 30-day retention) and mirrors records to
// stderr. The directory is created if missing.
func NewFileLogger(level LogLevel, dir string) (*Logger, error) {
	fs, err := NewFileSink(dir)
	if err != nil {
		return nil, err
	}
	return &Logger{level: level, sinks: []sink{newTextSink("[voiceagent]"), fs}}, nil
}

// SetLevel updates the logger's minimum level.
func (l *Logger) SetLevel(level LogLevel) { l.level = level }

// Debug logs debug-level messages
func (l *Logger) Debug(event string, fields map[string]any) { l.log(LogLevelDebug, event, fields) }

// Info logs info-level messages
func (l *Logger) Info(event string, fields map[string]any) { l.log(LogLevelInfo, event, fields) }

// Warn logs warning-level messages
func (l *Logger) Warn(event string, fields map[string]any) { l.log(LogLevelWarn, event, fields) }

// Error logs error-level messages
func (l *Logger) Error(event string, fields map[string]any) { l.log(LogLevelError, event, fields) }

func (l *Logger) log(level LogLevel, event string, fields map[string]any) {
	if level < l.level {
		return
	}
	for _, s := range l.sinks {
		s.write(level, event, fields)
	}
}

// LoggerFunc adapts the logger to the Config.Logger field.
func (l *Logger) LoggerFunc() func(string, map[string]any) {
	return func(event string, fields map[string]any) {
		l.Info(event, fields)
	}
}

// WithContext returns a logger that includes additional fields in every record.
func (l *Logger) WithContext(context map[string]any) *ContextualLogger {
	return &ContextualLogger{Logger: l, context: context}
}

// ContextualLogger wraps a Logger with fields merged into every record.
type ContextualLogger struct {
	*Logger
	context map[string]any
}

func (cl *ContextualLogger) mergeFields(fields map[string]any) map[string]any {
	merged := make(map[string]any, len(cl.context)+len(fields))
	for k, v := range cl.context {
		merged[k] = v
	}
	// Message fields override context on key collision.
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

// Debug logs debug-level messages with context
func (cl *ContextualLogger) Debug(event string, fields map[string]any) {
	cl.Logger.Debug(event, cl.mergeFields(fields))
}

// Info logs info-level messages with context
func (cl *ContextualLogger) Info(event string, fields map[string]any) {
	cl.Logger.Info(event, cl.mergeFields(fields))
}

// Warn logs warning-level messages with context
func (cl *ContextualLogger) Warn(event string, fields map[string]any) {
	cl.Logger.Warn(event, cl.mergeFields(fields))
}

// Error logs error-level messages with context
func (cl *ContextualLogger) Error(event string, fields map[string]any) {
	cl.Logger.Error(event, cl.mergeFields(fields))
}

// textSink writes human-readable records via the standard log package.
type textSink struct {
	prefix string
	logger *log.Logger
}

func newTextSink(prefix string) *textSink {
	return &textSink{prefix: prefix, logger: log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)}
}

func (t *textSink) write(level LogLevel, event string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", t.prefix, level.String(), event)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	t.logger.Print(b.String())
}

// logRetention is how long daily log files are kept before pruning.
const logRetention = 30 * 24 * time.Hour

const logFileSuffix = "_agent.log"

// FileSink writes one JSON object per line to a file named
// YYYY-MM-DD_agent.log under its directory. The file rolls over at midnight
// (checked on each write) and files older than the retention window are
// removed on rollover.
type FileSink struct {
	mu  sync.Mutex
	dir string
	day string // "YYYY-MM-DD" of the open file
	f   *os.File
	now func() time.Time
}

// NewFileSink opens a daily-rotated JSON log sink in dir.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	s := &FileSink{dir: dir, now: time.Now}
	if err := s.rotate(s.now()); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *FileSink) write(level LogLevel, event string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if day := now.Format("2006-01-02"); day != s.day {
		if err := s.rotate(now); err != nil {
			return // keep the old file; better than dropping the process
		}
	}
	if s.f == nil {
		return
	}

	record := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		record[k] = v
	}
	record["time"] = now.Format(time.RFC3339)
	record["level"] = level.String()
	record["event"] = event

	b, err := json.Marshal(record)
	if err != nil {
		return
	}
	_, _ = s.f.Write(append(b, '\n'))
}

// rotate must be called with the mutex held.
func (s *FileSink) rotate(now time.Time) error {
	if s.f != nil {
		_ = s.f.Close()
		s.f = nil
	}
	day := now.Format("2006-01-02")
	path := filepath.Join(s.dir, day+logFileSuffix)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	s.f = f
	s.day = day
	s.prune(now)
	return nil
}

// prune removes daily log files older than the retention window.
func (s *FileSink) prune(now time.Time) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	cutoff := now.Add(-logRetention)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, logFileSuffix) {
			continue
		}
		day, err := time.Parse("2006-01-02", strings.TrimSuffix(name, logFileSuffix))
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(filepath.Join(s.dir, name))
		}
	}
}

// DefaultLogger is the logger used when no custom logger is provided.
var DefaultLogger = NewLoggerFromEnv()

// LogDebug logs a debug message using the default logger
func LogDebug(event string, fields map[string]any) { DefaultLogger.Debug(event, fields) }

// LogInfo logs an info message using the default logger
func LogInfo(event string, fields map[string]any) { DefaultLogger.Info(event, fields) }

// LogWarn logs a warning message using the default logger
func LogWarn(event string, fields map[string]any) { DefaultLogger.Warn(event, fields) }

// LogError logs an error message using the default logger
func LogError(event string, fields map[string]any) { DefaultLogger.Error(event, fields) }
