package gateway

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTraceRecorderAppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	recorder, err := NewTraceRecorder(dir)
	if err != nil {
		t.Fatalf("new recorder failed: %v", err)
	}

	events := []TraceEvent{
		{ConnectionID: "c1", Event: "connected"},
		{ConnectionID: "c1", Event: "agent_turn", ToolCalls: []string{"create_task"}},
	}
	for _, e := range events {
		if err := recorder.Record(e); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	day := time.Now().UTC().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, day, "session_events.jsonl"))
	if err != nil {
		t.Fatalf("read trace file failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var decoded TraceEvent
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if decoded.Event != "agent_turn" || decoded.Status != "ok" || len(decoded.ToolCalls) != 1 {
		t.Fatalf("unexpected event: %+v", decoded)
	}
	if decoded.Timestamp == "" {
		t.Fatal("timestamp should be filled in")
	}
}

func TestTraceRecorderRequiresBasePath(t *testing.T) {
	if _, err := NewTraceRecorder("  "); err == nil {
		t.Fatal("expected error for empty base path")
	}
}
