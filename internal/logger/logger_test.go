package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitCreatesLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	if err := Init(Config{Dir: dir, Quiet: true}); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir was not created: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after Init")
	}

	Debug("debug message")
	Info("info message", "key", "value")
	Warn("warn message")
	Error("error message")

	if _, err := os.Stat(filepath.Join(dir, "tracker.log")); err != nil {
		t.Errorf("log file was not written: %v", err)
	}
}

func TestInitDebugMode(t *testing.T) {
	if err := Init(Config{Dir: t.TempDir(), Debug: true, Prefix: "test"}); err != nil {
		t.Fatalf("init logger in debug mode: %v", err)
	}
	Debug("debug message in debug mode")
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// must not panic
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
}
