package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		expected string
	}{
		{"debug level", LevelDebug, "debug"},
		{"info level", LevelInfo, "info"},
		{"warn level", LevelWarn, "warn"},
		{"error level", LevelError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.level) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.level))
			}
		})
	}
}

func TestLogFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   LogFormat
		expected string
	}{
		{"text format", FormatText, "text"},
		{"json format", FormatJSON, "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.format) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.format))
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected info level, got %s", cfg.Level)
	}
	if cfg.Format != FormatText {
		t.Errorf("Expected text format, got %s", cfg.Format)
	}
	// Scan results own stdout; logs must stay on stderr.
	if cfg.Output != "stderr" {
		t.Errorf("Expected stderr output, got %s", cfg.Output)
	}
}

func TestNewLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "netsweep.log")

	logger, err := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: path,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("scan started", "targets", "192.168.1.0/24")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if entry["msg"] != "scan started" {
		t.Errorf("Expected msg 'scan started', got %v", entry["msg"])
	}
	if entry["targets"] != "192.168.1.0/24" {
		t.Errorf("Expected targets field, got %v", entry["targets"])
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netsweep.log")

	logger, err := New(Config{
		Level:  LevelWarn,
		Format: FormatText,
		Output: path,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	out := string(data)
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Error("messages below warn should be filtered")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn message should be logged")
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netsweep.log")

	logger, err := New(Config{
		Level:  LogLevel("loud"),
		Format: FormatText,
		Output: path,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("info message")
	logger.Debug("debug message")

	data, _ := os.ReadFile(path)
	out := string(data)
	if !strings.Contains(out, "info message") {
		t.Error("info should pass at the fallback level")
	}
	if strings.Contains(out, "debug message") {
		t.Error("debug should be filtered at the fallback level")
	}
}

func TestWithHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netsweep.log")

	logger, err := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: path,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.WithComponent("scan").
		WithRunID("d3f1a0b2").
		WithTarget("10.0.0.1").
		Info("probe dispatched")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if entry["component"] != "scan" {
		t.Errorf("Expected component scan, got %v", entry["component"])
	}
	if entry["run_id"] != "d3f1a0b2" {
		t.Errorf("Expected run_id, got %v", entry["run_id"])
	}
	if entry["target"] != "10.0.0.1" {
		t.Errorf("Expected target, got %v", entry["target"])
	}
}

func TestDefaultLoggerReplacement(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	path := filepath.Join(t.TempDir(), "netsweep.log")
	logger, err := New(Config{
		Level:  LevelDebug,
		Format: FormatText,
		Output: path,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	SetDefault(logger)
	DebugProbe("tcp probe", "10.0.0.1", "port", 80)

	data, _ := os.ReadFile(path)
	out := string(data)
	if !strings.Contains(out, "tcp probe") || !strings.Contains(out, "10.0.0.1") {
		t.Errorf("package-level helper should use replaced default, got %q", out)
	}
}
