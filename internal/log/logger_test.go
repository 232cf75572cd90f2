package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/attire/internal/errors"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	logger.Info("pose generated", "pose", "front", "cache_hit", false)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "pose generated" {
		t.Errorf("expected msg 'pose generated', got %v", entry["msg"])
	}
	if entry["pose"] != "front" {
		t.Errorf("expected pose 'front', got %v", entry["pose"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelWarn,
		Format: FormatText,
		Output: NewOutput(&buf),
	})

	logger.Debug("should not appear")
	logger.Info("should not appear either")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("debug/info output leaked through warn-level logger: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("warn output missing: %q", out)
	}
}

func TestWithErrorAttireError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	err := errors.New(errors.ErrCodeGenTransport, "generation request failed").
		WithSuggestion("check network connectivity")

	logger.WithError(err).Error("try-on failed")

	out := buf.String()
	if !strings.Contains(out, "GEN-004") {
		t.Errorf("expected error_code in output, got %q", out)
	}
	if !strings.Contains(out, "check network connectivity") {
		t.Errorf("expected suggestion in output, got %q", out)
	}
}

func TestDefaultLoggerLazyInit(t *testing.T) {
	SetDefaultLogger(nil)
	logger := DefaultLogger()
	if logger == nil {
		t.Fatal("DefaultLogger should lazily initialize")
	}
	if DefaultLogger() != logger {
		t.Error("DefaultLogger should return the same instance on repeat calls")
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if ParseLevel("debug") != LevelDebug {
		t.Error("expected debug level")
	}
	if ParseLevel("nonsense") != LevelInfo {
		t.Error("unknown level should default to info")
	}
	if ParseFormat("text") != FormatText {
		t.Error("expected text format")
	}
	if ParseFormat("nonsense") != FormatJSON {
		t.Error("unknown format should default to json")
	}
}
