package voiceagent

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"error", LogLevelError},
		{"nonsense", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var events []string
	l := &Logger{level: LogLevelWarn, sinks: []sink{sinkFunc(func(level LogLevel, event string, fields map[string]any) {
		events = append(events, event)
	})}}

	l.Debug("debug_event", nil)
	l.Info("info_event", nil)
	l.Warn("warn_event", nil)
	l.Error("error_event", nil)

	if len(events) != 2 || events[0] != "warn_event" || events[1] != "error_event" {
		t.Errorf("unexpected events %v", events)
	}
}

type sinkFunc func(level LogLevel, event string, fields map[string]any)

func (f sinkFunc) write(level LogLevel, event string, fields map[string]any) { f(level, event, fields) }

func TestContextualLoggerMergesFields(t *testing.T) {
	var captured map[string]any
	l := &Logger{level: LogLevelDebug, sinks: []sink{sinkFunc(func(_ LogLevel, _ string, fields map[string]any) {
		captured = fields
	})}}

	cl := l.WithContext(map[string]any{"session_id": "s1"})
	cl.Info("event", map[string]any{"tool": "echo"})

	if captured["session_id"] != "s1" || captured["tool"] != "echo" {
		t.Errorf("fields not merged: %v", captured)
	}
}

func TestFileSinkWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer s.Close()

	now := time.Date(2026, time.May, 10, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.write(LogLevelInfo, "user_turn", map[string]any{"transcript": "hello"})

	path := filepath.Join(dir, "2026-05-10"+logFileSuffix)
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("expected daily log file: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("log file is empty")
	}
	var record map[string]any
	if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["event"] != "user_turn" || record["level"] != "INFO" {
		t.Errorf("unexpected record %v", record)
	}
	if record["transcript"] != "hello" {
		t.Errorf("fields not written: %v", record)
	}
	if _, err := time.Parse(time.RFC3339, record["time"].(string)); err != nil {
		t.Errorf("time field not RFC3339: %v", record["time"])
	}
}

func TestFileSinkRotatesAtMidnight(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer s.Close()

	day1 := time.Date(2026, time.May, 10, 23, 59, 0, 0, time.UTC)
	s.now = func() time.Time { return day1 }
	s.write(LogLevelInfo, "before_midnight", nil)

	day2 := day1.Add(2 * time.Minute)
	s.now = func() time.Time { return day2 }
	s.write(LogLevelInfo, "after_midnight", nil)

	if _, err := os.Stat(filepath.Join(dir, "2026-05-10"+logFileSuffix)); err != nil {
		t.Errorf("missing first day's file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "2026-05-11"+logFileSuffix)); err != nil {
		t.Errorf("missing second day's file: %v", err)
	}
}

func TestFileSinkPrunesOldFiles(t *testing.T) {
	dir := t.TempDir()

	now := time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-31 * 24 * time.Hour).Format("2006-01-02") + logFileSuffix
	fresh := now.Add(-5 * 24 * time.Hour).Format("2006-01-02") + logFileSuffix
	unrelated := "keepme.txt"
	for _, name := range []string{stale, fresh, unrelated} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer s.Close()

	s.now = func() time.Time { return now }
	// Force a rollover so pruning runs against the injected clock.
	s.mu.Lock()
	if err := s.rotate(now); err != nil {
		s.mu.Unlock()
		t.Fatalf("rotate: %v", err)
	}
	s.mu.Unlock()

	if _, err := os.Stat(filepath.Join(dir, stale)); !os.IsNotExist(err) {
		t.Errorf("stale file should be pruned, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, fresh)); err != nil {
		t.Errorf("fresh file should survive: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, unrelated)); err != nil {
		t.Errorf("unrelated file should survive: %v", err)
	}
}

func TestNewFileLoggerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	l, err := NewFileLogger(LogLevelInfo, dir)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	l.Info("startup", nil)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("log dir not created: %v", err)
	}
	if len(entries) == 0 {
		t.Error("no log file written")
	}
}
