package sage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperengineering/sage"
)

func TestDebugLogger_DisabledWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, err := sage.NewDebugLogger(false, path)
	if err != nil {
		t.Fatalf("NewDebugLogger: %v", err)
	}
	defer func() { _ = logger.Close() }()

	logger.Log("should not appear")
	logger.LogOperation("op", "details")
	logger.LogError("op", os.ErrNotExist)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled logger created the log file")
	}
}

func TestDebugLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, err := sage.NewDebugLogger(true, path)
	if err != nil {
		t.Fatalf("NewDebugLogger: %v", err)
	}

	logger.Log("recorded session for %s", "learner-1")
	logger.LogOperation("ReviewCard", "card-9 quality=4")
	logger.LogError("Calibrate", os.ErrNotExist)

	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)

	if !strings.Contains(out, "[SAGE DEBUG]") {
		t.Error("log lines missing the debug prefix")
	}
	if !strings.Contains(out, "recorded session for learner-1") {
		t.Error("formatted message missing")
	}
	if !strings.Contains(out, "OP [ReviewCard]: card-9 quality=4") {
		t.Error("operation line missing")
	}
	if !strings.Contains(out, "ERROR [Calibrate]:") {
		t.Error("error line missing")
	}
}

func TestDebugLogger_TruncatesLongOperationDetails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, err := sage.NewDebugLogger(true, path)
	if err != nil {
		t.Fatalf("NewDebugLogger: %v", err)
	}

	logger.LogOperation("Import", strings.Repeat("x", 5000))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "truncated, 5000 bytes total") {
		t.Error("long details were not truncated")
	}
}

func TestDebugLogger_NilIsSafe(t *testing.T) {
	var logger *sage.DebugLogger
	logger.Log("no-op")
	logger.LogOperation("op", "details")
	logger.LogError("op", os.ErrNotExist)
	if err := logger.Close(); err != nil {
		t.Errorf("Close on nil = %v", err)
	}
}
