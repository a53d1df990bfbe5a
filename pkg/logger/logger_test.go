package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		logFunc  func(string, ...any)
		logMsg   string
		expected bool
	}{
		{"Debug when debug level", "debug", Debug, "generation done", true},
		{"Debug when info level", "info", Debug, "generation done", false},
		{"Info when info level", "info", Info, "run started", true},
		{"Warn when error level", "error", Warn, "plot failed", false},
		{"Error when info level", "info", Error, "objective failed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetDefault(New(tt.logLevel, &buf))

			tt.logFunc(tt.logMsg)
			output := buf.String()

			if tt.expected && !strings.Contains(output, tt.logMsg) {
				t.Errorf("Expected log output to contain '%s', got: %s", tt.logMsg, output)
			}
			if !tt.expected && strings.Contains(output, tt.logMsg) {
				t.Errorf("Expected log output NOT to contain '%s', got: %s", tt.logMsg, output)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(New("info", &buf))

	Info("generation", "generation", 3, "best_value", 1.5)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log output: %v", err)
	}
	if entry["msg"] != "generation" {
		t.Errorf("Expected msg 'generation', got '%v'", entry["msg"])
	}
	if entry["generation"] != float64(3) {
		t.Errorf("Expected generation 3, got '%v'", entry["generation"])
	}
	if entry["best_value"] != 1.5 {
		t.Errorf("Expected best_value 1.5, got '%v'", entry["best_value"])
	}
}

func TestNewFormat(t *testing.T) {
	var buf bytes.Buffer
	NewFormat("text", "info", &buf).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("Expected text output, got: %s", buf.String())
	}

	buf.Reset()
	NewFormat("JSON", "info", &buf).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("Expected json output, got: %s", buf.String())
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(New("info", &buf))

	Component("engine").Info("initialized")
	Component("executor").With("run_id", "run-1").Info("started")

	output := buf.String()
	if !strings.Contains(output, `"component":"engine"`) {
		t.Errorf("Expected component attribute, got: %s", output)
	}
	if !strings.Contains(output, `"component":"executor","run_id":"run-1"`) {
		t.Errorf("Expected run_id attribute, got: %s", output)
	}
}
