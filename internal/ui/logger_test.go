package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	logger.Debug("hidden")
	logger.Info("cloning", "library", "jsmn")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message printed without verbose: %q", out)
	}
	if !strings.Contains(out, "cloning") || !strings.Contains(out, "jsmn") {
		t.Errorf("info message missing: %q", out)
	}
	if !strings.Contains(out, "esp8266-setup") {
		t.Errorf("prefix missing: %q", out)
	}
}

func TestNewLoggerVerbose(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, true).Debug("details")
	if !strings.Contains(buf.String(), "details") {
		t.Errorf("debug message missing with verbose: %q", buf.String())
	}
}

func TestSuccessAndWarning(t *testing.T) {
	if !strings.Contains(Success("added jsmn"), "added jsmn") {
		t.Error("Success() dropped the message")
	}
	if !strings.Contains(Warning("skipped"), "skipped") {
		t.Error("Warning() dropped the message")
	}
}
