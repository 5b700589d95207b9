package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn, &buf)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn %s", "message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn should be filtered, got: %s", out)
	}
	if !strings.Contains(out, "warn message") {
		t.Errorf("expected formatted warn message, got: %s", out)
	}
	if !strings.Contains(out, "error message") {
		t.Errorf("expected error message, got: %s", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelError, &buf)

	l.Info("hidden")
	l.SetLevel(LevelDebug)
	l.Debug("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at error level: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("debug not logged after SetLevel: %s", out)
	}
}

func TestWithPrefixAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf).WithPrefix("ENGINE").WithFields(map[string]interface{}{
		"files": 3,
		"rule":  "ORD-001",
	})

	l.Info("checked")

	out := buf.String()
	for _, want := range []string{"ENGINE", "checked", "files=3", "rule=ORD-001"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestWithFieldDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	parent := New(LevelInfo, &buf)
	_ = parent.WithField("file", "a.h")

	parent.Info("plain")

	if strings.Contains(buf.String(), "a.h") {
		t.Errorf("child field leaked into parent: %s", buf.String())
	}
}

func TestSetFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)

	if err := l.SetFormat(FormatJSON); err != nil {
		t.Fatalf("SetFormat(json) error = %v", err)
	}
	l.Info("structured")

	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, "structured") {
		t.Errorf("expected a json record, got: %s", out)
	}

	if err := l.SetFormat("xml"); err == nil {
		t.Error("SetFormat(xml) should fail")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "WARN" {
		t.Errorf("LevelWarn.String() = %q, want WARN", LevelWarn.String())
	}
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("Level(42).String() = %q, want UNKNOWN", Level(42).String())
	}
}
