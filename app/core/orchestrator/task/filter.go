package task

import (
	"strings"
	"time"
)

// Filter is a conjunction of snapshot constraints. The zero value matches
// every task.
type Filter struct {
	Status   string
	Priority string

	// Due window, Unix seconds. From is inclusive, Until exclusive; zero
	// means unbounded on that side. DueRequired additionally excludes
	// tasks with no deadline.
	DueRequired bool
	DueFrom     int64
	DueUntil    int64

	// Statuses excluded on top of the positive constraints (used by the
	// overdue window to drop completed/archived tasks).
	ExcludeStatuses []string
}

func (f Filter) IsZero() bool {
	return f.Status == "" && f.Priority == "" && !f.DueRequired &&
		f.DueFrom == 0 && f.DueUntil == 0 && len(f.ExcludeStatuses) == 0
}

var readIntentKeywords = []string{"show", "list", "filter", "only", "what are", "display"}

// IsReadIntent reports whether a user message looks like a read/filter
// request rather than a task mutation or chat.
func IsReadIntent(message string) bool {
	msg := strings.ToLower(message)
	for _, kw := range readIntentKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// DeriveFilter maps keyword heuristics in the user's message onto filter
// criteria. Within each category the first matching rule wins; categories
// combine with AND. A message with no recognized keyword yields the zero
// filter, i.e. a full snapshot.
func DeriveFilter(message string, now time.Time) Filter {
	msg := strings.ToLower(message)
	var f Filter

	switch {
	case containsAny(msg, "completed", "done", "finished"):
		f.Status = StatusCompleted
	case containsAny(msg, "inprogress", "in progress", "pending", "incomplete", "not started", "todo"):
		f.Status = StatusInProgress
	case strings.Contains(msg, "archived"):
		f.Status = StatusArchived
	}

	switch {
	case containsAny(msg, "high priority", "urgent", "asap", "important"):
		f.Priority = PriorityHigh
	case strings.Contains(msg, "medium priority"):
		f.Priority = PriorityMedium
	case containsAny(msg, "low priority", "whenever", "sometime"):
		f.Priority = PriorityLow
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case containsAny(msg, "today", "todays", "today's"):
		f.DueRequired = true
		f.DueFrom = startOfDay.Unix()
		f.DueUntil = startOfDay.AddDate(0, 0, 1).Unix()
	case strings.Contains(msg, "tomorrow"):
		f.DueRequired = true
		f.DueFrom = startOfDay.AddDate(0, 0, 1).Unix()
		f.DueUntil = startOfDay.AddDate(0, 0, 2).Unix()
	case strings.Contains(msg, "this week"):
		f.DueRequired = true
		f.DueFrom = startOfDay.Unix()
		f.DueUntil = startOfDay.AddDate(0, 0, 8).Unix()
	case containsAny(msg, "overdue", "missed"):
		f.DueRequired = true
		f.DueUntil = now.Unix()
		f.ExcludeStatuses = []string{StatusCompleted, StatusArchived}
	}

	return f
}

func containsAny(msg string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}
