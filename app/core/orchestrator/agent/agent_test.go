package agent

import (
	"strings"
	"testing"
	"time"

	"taskmate/app/pkg/types"
)

func TestParseToolArgs(t *testing.T) {
	args := parseToolArgs(`{"title": "buy milk", "task_id": 3, "done": true}`)
	if args["title"] != "buy milk" {
		t.Fatalf("unexpected title: %v", args["title"])
	}
	if args["task_id"] != float64(3) {
		t.Fatalf("unexpected task_id: %v", args["task_id"])
	}
	if args["done"] != true {
		t.Fatalf("unexpected done: %v", args["done"])
	}
}

func TestParseToolArgsTolerantOfGarbage(t *testing.T) {
	if args := parseToolArgs(""); len(args) != 0 {
		t.Fatalf("empty input should yield no args: %v", args)
	}
	if args := parseToolArgs("not json at all"); len(args) != 0 {
		t.Fatalf("non-JSON input should yield no args: %v", args)
	}
	// truncated object, readable prefix survives
	args := parseToolArgs(`{"title": "buy milk", "descr`)
	if args["title"] != "buy milk" {
		t.Fatalf("readable prefix should survive: %v", args)
	}
}

func TestTrimTranscriptKeepsNewestTurns(t *testing.T) {
	transcript := []types.ChatTurn{
		{Role: types.RoleUser, Content: "one"},
		{Role: types.RoleAssistant, Content: "two"},
		{Role: types.RoleUser, Content: "three"},
	}
	trimmed := trimTranscript(transcript, 2)
	if len(trimmed) != 2 || trimmed[0].Content != "two" || trimmed[1].Content != "three" {
		t.Fatalf("unexpected trim result: %+v", trimmed)
	}
	if got := trimTranscript(transcript, 0); len(got) != 3 {
		t.Fatalf("zero budget should disable trimming, got %d turns", len(got))
	}
	if got := trimTranscript(transcript, 10); len(got) != 3 {
		t.Fatalf("short transcript should pass through, got %d turns", len(got))
	}
}

func TestLastUserContent(t *testing.T) {
	transcript := []types.ChatTurn{
		{Role: types.RoleUser, Content: "first"},
		{Role: types.RoleAssistant, Content: "reply"},
		{Role: types.RoleUser, Content: "second"},
	}
	if got := lastUserContent(transcript); got != "second" {
		t.Fatalf("unexpected last user content: %q", got)
	}
	if got := lastUserContent(nil); got != "" {
		t.Fatalf("empty transcript should yield empty content, got %q", got)
	}
}

func TestUpdateMemoryAppendsExchange(t *testing.T) {
	memory := updateMemory("User: hi\nAssistant: hello", "add a task", "Done, created it.", 1200)
	for _, want := range []string{"User: hi", "User: add a task", "Assistant: Done, created it."} {
		if !strings.Contains(memory, want) {
			t.Fatalf("memory missing %q:\n%s", want, memory)
		}
	}
}

func TestUpdateMemoryKeepsNewestRunes(t *testing.T) {
	old := strings.Repeat("x", 50)
	memory := updateMemory(old, "newest user line", "newest reply", 60)
	if got := len([]rune(memory)); got > 60 {
		t.Fatalf("memory exceeds budget: %d runes", got)
	}
	if !strings.Contains(memory, "newest reply") {
		t.Fatalf("truncation should keep the newest content:\n%s", memory)
	}
}

func TestSystemPromptMentionsDateAndMemory(t *testing.T) {
	a := &TaskMate{name: "TaskMate"}
	now := time.Date(2026, time.September, 3, 10, 0, 0, 0, time.UTC)

	prompt := a.systemPrompt(now, "User: buy milk\nAssistant: done")
	if !strings.Contains(prompt, "TaskMate") {
		t.Fatal("prompt missing agent name")
	}
	if !strings.Contains(prompt, "Thursday, September 3, 2026") {
		t.Fatalf("prompt missing current date:\n%s", prompt)
	}
	if !strings.Contains(prompt, "23:59:59") {
		t.Fatal("prompt missing end-of-day rule")
	}
	if !strings.Contains(prompt, "User: buy milk") {
		t.Fatal("prompt missing memory summary")
	}

	bare := a.systemPrompt(now, "")
	if strings.Contains(bare, "Conversation so far") {
		t.Fatal("empty memory should not add a summary section")
	}
}
