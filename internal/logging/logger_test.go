package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureToFile redirects logging into a temp file for the duration of fn
// and returns what was written.
func captureToFile(t *testing.T, level string, fn func()) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fanout.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create log file: %v", err)
	}
	defer f.Close()

	SetLevel(level)
	SetOutput(f)
	defer RestoreOutput()

	fn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(data)
}

// TestLogLevels tests that every level function writes its message
func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func()
		expected string
	}{
		{"info", func() { Info("dispatch %s", "started") }, "dispatch started"},
		{"warn", func() { Warn("pool %s empty", "BR") }, "pool BR empty"},
		{"error", func() { Error("bind failed: %v", "boom") }, "bind failed: boom"},
		{"debug", func() { Debug("outcome %d", 200) }, "outcome 200"},
		{"success", func() { Success("server %s", "ready") }, "server ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureToFile(t, "DEBUG", tt.logFunc)
			if !strings.Contains(output, tt.expected) {
				t.Errorf("expected output to contain %q, got %q", tt.expected, output)
			}
		})
	}
}

// TestSetLevel_Filters tests that messages below the level are dropped
func TestSetLevel_Filters(t *testing.T) {
	output := captureToFile(t, "WARN", func() {
		Info("hidden info")
		Success("hidden success")
		Debug("hidden debug")
		Warn("visible warn")
	})

	for _, hidden := range []string{"hidden info", "hidden success", "hidden debug"} {
		if strings.Contains(output, hidden) {
			t.Errorf("output should not contain %q at WARN level: %q", hidden, output)
		}
	}
	if !strings.Contains(output, "visible warn") {
		t.Errorf("output should contain warn message: %q", output)
	}
}

// TestLevelWriter tests line splitting and prefixing
func TestLevelWriter(t *testing.T) {
	output := captureToFile(t, "DEBUG", func() {
		w := NewLevelWriter("error", "gin")
		n, err := w.Write([]byte("first line\n\n  second line  \n"))
		if err != nil {
			t.Errorf("Write() error = %v", err)
		}
		if n != len("first line\n\n  second line  \n") {
			t.Errorf("Write() n = %d, want full length", n)
		}
	})

	if !strings.Contains(output, "gin: first line") {
		t.Errorf("missing first line in %q", output)
	}
	if !strings.Contains(output, "gin: second line") {
		t.Errorf("missing trimmed second line in %q", output)
	}
}

// TestValidateLogLevel tests accepted and rejected level names
func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		if err := ValidateLogLevel(level); err != nil {
			t.Errorf("ValidateLogLevel(%q) = %v, want nil", level, err)
		}
	}
	for _, level := range []string{"", "info", "TRACE"} {
		if err := ValidateLogLevel(level); err == nil {
			t.Errorf("ValidateLogLevel(%q) = nil, want error", level)
		}
	}
	if got := NormalizeLogLevel(" warn "); got != "WARN" {
		t.Errorf("NormalizeLogLevel() = %q, want WARN", got)
	}
}

// TestRedact tests that tokens are never logged in full
func TestRedact(t *testing.T) {
	SetLevel("INFO")
	defer SetLevel("INFO")

	token := "eyJhbGciOiJIUzI1NiJ9.payload.signature"
	got := Redact(token)
	if got != token[:10]+"..." {
		t.Errorf("Redact() = %q, want 10 char prefix", got)
	}
	if Redact("") != "<empty>" {
		t.Errorf("Redact(\"\") = %q, want <empty>", Redact(""))
	}
	if Redact("short") != "***" {
		t.Errorf("Redact(short) = %q, want ***", Redact("short"))
	}

	SetLevel("DEBUG")
	if got := Redact(token); got != token[:16]+"..." {
		t.Errorf("Redact() at DEBUG = %q, want 16 char prefix", got)
	}
}
