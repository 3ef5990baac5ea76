package task

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusArchived   = "archived"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is one persisted task record. DueDate, CreatedAt and UpdatedAt are
// Unix seconds; DueDate zero means no deadline.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     int64
	CreatedAt   int64
	UpdatedAt   int64
}

// Payload is the wire form of a Task: RFC 3339 timestamps, explicit null
// for a missing due date.
type Payload struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func (t Task) Payload() Payload {
	p := Payload{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   formatUnix(t.CreatedAt),
		UpdatedAt:   formatUnix(t.UpdatedAt),
	}
	if t.DueDate != 0 {
		due := formatUnix(t.DueDate)
		p.DueDate = &due
	}
	return p
}

// Payloads never returns nil so the wire frame serializes "tasks":[]
// rather than "tasks":null.
func Payloads(items []Task) []Payload {
	out := make([]Payload, 0, len(items))
	for _, t := range items {
		out = append(out, t.Payload())
	}
	return out
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// NormalizeStatus maps user- and model-facing spellings onto the canonical
// status values. The legacy "inprogress" spelling is accepted as input.
func NormalizeStatus(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StatusInProgress, "inprogress", "in progress", "pending":
		return StatusInProgress, nil
	case StatusCompleted, "done":
		return StatusCompleted, nil
	case StatusArchived:
		return StatusArchived, nil
	default:
		return "", fmt.Errorf("invalid status: %s", raw)
	}
}

func NormalizePriority(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium, "normal":
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority: %s", raw)
	}
}

// ParseDueDate accepts the formats the agent is instructed to emit:
// RFC 3339, date-time without zone, or a bare date (which defaults the
// time to end of day).
func ParseDueDate(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.Unix(), nil
	}
	if ts, err := time.ParseInLocation("2006-01-02T15:04:05", raw, time.Local); err == nil {
		return ts.Unix(), nil
	}
	if day, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		endOfDay := day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		return endOfDay.Unix(), nil
	}
	return 0, fmt.Errorf("invalid due date: %s", raw)
}
