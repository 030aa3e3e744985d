package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		logFn   func(l *Logger)
		want    bool // should log
		wantMsg string
	}{
		{
			name:    "info message",
			logFn:   func(l *Logger) { l.Info("test message", Fields{"key": "value"}) },
			want:    true,
			wantMsg: "test message",
		},
		{
			name:  "debug below threshold",
			logFn: func(l *Logger) { l.Debug("debug message", nil) },
			want:  false,
		},
		{
			name:    "error with err",
			logFn:   func(l *Logger) { l.Error("error occurred", nil, errors.New("test error")) },
			want:    true,
			wantMsg: "error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(LevelInfo, &buf)

			tt.logFn(logger)

			logged := buf.Len() > 0
			if logged != tt.want {
				t.Fatalf("logged = %v, want %v", logged, tt.want)
			}
			if !logged {
				return
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
			}
			if entry["message"] != tt.wantMsg {
				t.Errorf("message = %v, want %v", entry["message"], tt.wantMsg)
			}
			if _, ok := entry["time"]; !ok {
				t.Error("entry missing timestamp")
			}
		})
	}
}

func TestLogger_FieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelDebug, &buf)

	logger.Error("fetch failed", Fields{"url": "https://example.com", "attempt": 2}, errors.New("boom"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if entry["url"] != "https://example.com" {
		t.Errorf("url = %v, want https://example.com", entry["url"])
	}
	if entry["attempt"] != float64(2) {
		t.Errorf("attempt = %v, want 2", entry["attempt"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}
	if entry["level"] != "error" {
		t.Errorf("level = %v, want error", entry["level"])
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logFn     func(l *Logger)
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, func(l *Logger) { l.Debug("test", nil) }, true},
		{"info logs at debug", LevelDebug, func(l *Logger) { l.Info("test", nil) }, true},
		{"debug doesn't log at info", LevelInfo, func(l *Logger) { l.Debug("test", nil) }, false},
		{"warn doesn't log at error", LevelError, func(l *Logger) { l.Warn("test", nil) }, false},
		{"error always logs", LevelDebug, func(l *Logger) { l.Error("test", nil, nil) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFn(New(tt.minLevel, &buf))

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("logged = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{" WARN ", LevelWarn},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"info", LevelInfo},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewWithFormat_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormat(LevelInfo, FormatConsole, &buf)

	logger.Info("human readable", Fields{"quests": 3})

	out := buf.String()
	if !strings.Contains(out, "human readable") {
		t.Errorf("console output missing message: %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("console output should not be JSON: %q", out)
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("test_counter")
	m.IncrCounter("test_counter")
	m.AddCounter("test_counter", 3)

	counters := m.GetSnapshot()["counters"].(map[string]int64)
	if counters["test_counter"] != 5 {
		t.Errorf("Counter = %v, want 5", counters["test_counter"])
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("store.pending", 12)
	m.SetGauge("store.pending", 4)

	gauges := m.GetSnapshot()["gauges"].(map[string]float64)
	if gauges["store.pending"] != 4 {
		t.Errorf("Gauge = %v, want 4", gauges["store.pending"])
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("scrape", 100*time.Millisecond)
	m.RecordTiming("scrape", 200*time.Millisecond)
	m.RecordTiming("scrape", 150*time.Millisecond)

	timings := m.GetSnapshot()["timings"].(map[string]map[string]interface{})
	scrape := timings["scrape"]

	if scrape["count"].(int) != 3 {
		t.Errorf("Timing count = %v, want 3", scrape["count"])
	}
	if scrape["min"].(string) != "100ms" {
		t.Errorf("Min timing = %v, want 100ms", scrape["min"])
	}
	if scrape["max"].(string) != "200ms" {
		t.Errorf("Max timing = %v, want 200ms", scrape["max"])
	}
	if scrape["average"].(string) != "150ms" {
		t.Errorf("Average timing = %v, want 150ms", scrape["average"])
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	previous := defaultLogger
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(previous)

	Debug("test debug", nil)
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	if lines := strings.Count(buf.String(), "\n"); lines != 4 {
		t.Errorf("logged %d lines, want 4", lines)
	}

	IncrCounter("test")
	SetGauge("test", 42.0)
	RecordTiming("test", time.Second)

	if snapshot := GetMetricsSnapshot(); snapshot == nil {
		t.Error("GetMetricsSnapshot() returned nil")
	}
}
