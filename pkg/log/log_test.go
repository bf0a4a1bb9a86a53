package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestSetupAndFields(t *testing.T) {
	var buf bytes.Buffer
	Setup("debug", "json", &buf)
	defer Setup("info", "json", nil)

	logger := GetLoggerWithName("test").With("fold", 3)
	logger.Info("training fold", "rows", 100)

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, line)
	}
	if record["component"] != "test" {
		t.Errorf("component = %v, want test", record["component"])
	}
	if record["fold"] != float64(3) {
		t.Errorf("fold = %v, want 3", record["fold"])
	}
	if record["rows"] != float64(100) {
		t.Errorf("rows = %v, want 100", record["rows"])
	}
	if record["message"] != "training fold" {
		t.Errorf("message = %v", record["message"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Setup("warn", "json", &buf)
	defer Setup("info", "json", nil)

	GetLogger().Info("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("info record emitted at warn level: %q", buf.String())
	}

	GetLogger().Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}
