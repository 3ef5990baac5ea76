package task

import (
	"testing"
	"time"
)

func TestIsReadIntent(t *testing.T) {
	reads := []string{
		"show my tasks",
		"list everything please",
		"filter by priority",
		"only the urgent ones",
		"what are my tasks for today",
		"display archived tasks",
	}
	for _, msg := range reads {
		if !IsReadIntent(msg) {
			t.Fatalf("expected read intent for %q", msg)
		}
	}

	writes := []string{
		"buy milk tomorrow",
		"mark the report as done",
		"delete the dentist appointment",
		"",
	}
	for _, msg := range writes {
		if IsReadIntent(msg) {
			t.Fatalf("did not expect read intent for %q", msg)
		}
	}
}

func TestDeriveFilterCombinesCategories(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.Local)

	f := DeriveFilter("show completed high priority tasks", now)
	if f.Status != StatusCompleted {
		t.Fatalf("unexpected status: %q", f.Status)
	}
	if f.Priority != PriorityHigh {
		t.Fatalf("unexpected priority: %q", f.Priority)
	}
	if f.DueRequired {
		t.Fatal("no due window expected")
	}
}

func TestDeriveFilterFirstMatchWinsPerCategory(t *testing.T) {
	now := time.Now()

	// "completed" outranks the later "pending" mention
	f := DeriveFilter("show completed tasks, not the pending ones", now)
	if f.Status != StatusCompleted {
		t.Fatalf("unexpected status: %q", f.Status)
	}

	f = DeriveFilter("list todo items", now)
	if f.Status != StatusInProgress {
		t.Fatalf("unexpected status for todo: %q", f.Status)
	}
}

func TestDeriveFilterNoKeywordsYieldsZeroFilter(t *testing.T) {
	f := DeriveFilter("show everything", time.Now())
	if !f.IsZero() {
		t.Fatalf("expected zero filter, got %+v", f)
	}
}

func TestDeriveFilterDueWindows(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.Local)
	startOfDay := time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local)

	f := DeriveFilter("what are today's tasks", now)
	if !f.DueRequired {
		t.Fatal("expected due constraint")
	}
	if f.DueFrom != startOfDay.Unix() || f.DueUntil != startOfDay.AddDate(0, 0, 1).Unix() {
		t.Fatalf("unexpected today window: [%d, %d)", f.DueFrom, f.DueUntil)
	}

	f = DeriveFilter("show tasks due tomorrow", now)
	if f.DueFrom != startOfDay.AddDate(0, 0, 1).Unix() || f.DueUntil != startOfDay.AddDate(0, 0, 2).Unix() {
		t.Fatalf("unexpected tomorrow window: [%d, %d)", f.DueFrom, f.DueUntil)
	}

	f = DeriveFilter("list this week", now)
	if f.DueFrom != startOfDay.Unix() || f.DueUntil != startOfDay.AddDate(0, 0, 8).Unix() {
		t.Fatalf("unexpected week window: [%d, %d)", f.DueFrom, f.DueUntil)
	}
}

func TestDeriveFilterOverdue(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.Local)

	f := DeriveFilter("show overdue tasks", now)
	if !f.DueRequired {
		t.Fatal("expected due constraint")
	}
	if f.DueFrom != 0 {
		t.Fatalf("overdue has no lower bound, got %d", f.DueFrom)
	}
	if f.DueUntil != now.Unix() {
		t.Fatalf("expected upper bound at now, got %d", f.DueUntil)
	}
	if len(f.ExcludeStatuses) != 2 {
		t.Fatalf("expected completed and archived excluded, got %v", f.ExcludeStatuses)
	}
}
