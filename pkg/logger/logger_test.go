package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"ERROR", ErrorLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	Initialize(Config{Level: WarnLevel, Component: "test"})
	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WarnLevel should be suppressed, got: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("warn/error messages missing from output: %s", out)
	}
}

func TestJSONOutput(t *testing.T) {
	Initialize(Config{Level: InfoLevel, JSON: true, Component: "repolicy"})
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("hello", String("file", ".pre-commit-config.yaml"), Int("count", 2))

	var entry Entry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Message != "hello" {
		t.Errorf("message = %q, expected %q", entry.Message, "hello")
	}
	if entry.Component != "repolicy" {
		t.Errorf("component = %q, expected %q", entry.Component, "repolicy")
	}
	if entry.Fields["file"] != ".pre-commit-config.yaml" {
		t.Errorf("missing field file, got fields: %v", entry.Fields)
	}
}

func TestPrettyOutputContainsLevelAndComponent(t *testing.T) {
	Initialize(Config{Level: InfoLevel, Component: "check"})
	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("config rewritten")

	out := buf.String()
	if !strings.Contains(out, "[WARN]") {
		t.Errorf("expected level marker in output: %s", out)
	}
	if !strings.Contains(out, "check:") {
		t.Errorf("expected component in output: %s", out)
	}
}
