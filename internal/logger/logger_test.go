package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSetVerbose(t *testing.T) {
	// Reset state after test
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	SetVerbose(false)
	if level.Enabled(zapcore.DebugLevel) {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !level.Enabled(zapcore.DebugLevel) {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if level.Enabled(zapcore.DebugLevel) {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	output := buf.String()
	if !strings.Contains(output, "DEBUG") {
		t.Errorf("expected DEBUG level in output: %q", output)
	}
	if !strings.Contains(output, "test message arg") {
		t.Errorf("expected formatted message in output: %q", output)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info message")
	Section("Tiling")

	if buf.Len() > 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Tiling")

	if !strings.Contains(buf.String(), "=== Tiling ===") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestWarn_AlwaysPrinted(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("retrying in %s", "3s")

	output := buf.String()
	if !strings.Contains(output, "WARN") || !strings.Contains(output, "retrying in 3s") {
		t.Errorf("unexpected output: %q", output)
	}
}
