package tools

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"taskmate/app/core/orchestrator/task"
	"taskmate/app/pkg/types"
)

// RegisterTaskTools wires the task capabilities into the registry. Store
// failures are folded into the returned result string so the model can
// relay them conversationally instead of the turn aborting.
func RegisterTaskTools(r *Registry, store *task.Store, similarityThreshold float64) {
	r.Register(&createTaskTool{store: store})
	r.Register(&updateTaskTool{store: store})
	r.Register(&deleteTaskTool{store: store})
	r.Register(&listTasksTool{store: store})
	r.Register(&filterTasksTool{store: store})
	r.Register(&checkDuplicateTool{store: store, threshold: similarityThreshold})
}

type createTaskTool struct {
	store *task.Store
}

func (t *createTaskTool) Manifest() types.ToolManifest {
	return types.ToolManifest{
		Name:        "create_task",
		Description: "Create a new task with title, description, priority, and optional due_date.",
		Mutating:    true,
		Parameters: map[string]interface{}{
			"title":       map[string]interface{}{"type": "string", "description": "Short task title"},
			"description": map[string]interface{}{"type": "string", "description": "Longer free-form details"},
			"priority":    map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
			"due_date":    map[string]interface{}{"type": "string", "description": "Deadline in ISO 8601, e.g. 2026-09-01T23:59:59"},
		},
		Required: []string{"title"},
	}
}

func (t *createTaskTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	title := stringArg(args, "title")
	due, err := dueArg(args)
	if err != nil {
		return fmt.Sprintf("Error creating task: %v", err), nil
	}
	created, err := t.store.Create(ctx, title, stringArg(args, "description"), stringArg(args, "priority"), due)
	if err != nil {
		return fmt.Sprintf("Error creating task: %v", err), nil
	}
	return fmt.Sprintf("Task '%s' created successfully with ID %d", created.Title, created.ID), nil
}

type updateTaskTool struct {
	store *task.Store
}

func (t *updateTaskTool) Manifest() types.ToolManifest {
	return types.ToolManifest{
		Name:        "update_task",
		Description: "Update a task's fields by ID. Only the provided fields change.",
		Mutating:    true,
		Parameters: map[string]interface{}{
			"task_id":     map[string]interface{}{"type": "integer"},
			"title":       map[string]interface{}{"type": "string"},
			"description": map[string]interface{}{"type": "string"},
			"status":      map[string]interface{}{"type": "string", "enum": []string{"in_progress", "completed", "archived"}},
			"priority":    map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
			"due_date":    map[string]interface{}{"type": "string", "description": "New deadline in ISO 8601"},
		},
		Required: []string{"task_id"},
	}
}

func (t *updateTaskTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	id, ok := intArg(args, "task_id")
	if !ok {
		return "Error updating task: task_id is required", nil
	}

	var upd task.Update
	if v := stringArg(args, "title"); v != "" {
		upd.Title = &v
	}
	if v, present := args["description"]; present {
		if s, isStr := v.(string); isStr {
			upd.Description = &s
		}
	}
	if v := stringArg(args, "status"); v != "" {
		upd.Status = &v
	}
	if v := stringArg(args, "priority"); v != "" {
		upd.Priority = &v
	}
	if stringArg(args, "due_date") != "" {
		due, err := dueArg(args)
		if err != nil {
			return fmt.Sprintf("Error updating task: %v", err), nil
		}
		upd.DueDate = &due
	}

	updated, err := t.store.Update(ctx, id, upd)
	if err == sql.ErrNoRows {
		return fmt.Sprintf("Task with ID %d not found", id), nil
	}
	if err != nil {
		return fmt.Sprintf("Error updating task: %v", err), nil
	}
	return fmt.Sprintf("Task %d updated successfully", updated.ID), nil
}

type deleteTaskTool struct {
	store *task.Store
}

func (t *deleteTaskTool) Manifest() types.ToolManifest {
	return types.ToolManifest{
		Name:        "delete_task",
		Description: "Delete a task by ID.",
		Mutating:    true,
		Parameters: map[string]interface{}{
			"task_id": map[string]interface{}{"type": "integer"},
		},
		Required: []string{"task_id"},
	}
}

func (t *deleteTaskTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	id, ok := intArg(args, "task_id")
	if !ok {
		return "Error deleting task: task_id is required", nil
	}
	err := t.store.Delete(ctx, id)
	if err == sql.ErrNoRows {
		return fmt.Sprintf("Task with ID %d not found", id), nil
	}
	if err != nil {
		return fmt.Sprintf("Error deleting task: %v", err), nil
	}
	return fmt.Sprintf("Task %d deleted successfully", id), nil
}

type listTasksTool struct {
	store *task.Store
}

func (t *listTasksTool) Manifest() types.ToolManifest {
	return types.ToolManifest{
		Name:        "list_tasks",
		Description: "List all tasks, optionally restricted to one status.",
		Mutating:    false,
		Parameters: map[string]interface{}{
			"status": map[string]interface{}{"type": "string", "enum": []string{"in_progress", "completed", "archived"}},
		},
	}
}

func (t *listTasksTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	var f task.Filter
	if v := stringArg(args, "status"); v != "" {
		status, err := task.NormalizeStatus(v)
		if err != nil {
			return fmt.Sprintf("Error listing tasks: %v", err), nil
		}
		f.Status = status
	}
	items, err := t.store.Snapshot(ctx, f)
	if err != nil {
		return fmt.Sprintf("Error listing tasks: %v", err), nil
	}
	if len(items) == 0 {
		return "No tasks found", nil
	}
	return "Tasks:\n" + renderTasks(items), nil
}

type filterTasksTool struct {
	store *task.Store
}

func (t *filterTasksTool) Manifest() types.ToolManifest {
	return types.ToolManifest{
		Name:        "filter_tasks",
		Description: "Filter tasks by priority and/or status.",
		Mutating:    false,
		Parameters: map[string]interface{}{
			"priority": map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
			"status":   map[string]interface{}{"type": "string", "enum": []string{"in_progress", "completed", "archived"}},
		},
	}
}

func (t *filterTasksTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	var f task.Filter
	if v := stringArg(args, "status"); v != "" {
		status, err := task.NormalizeStatus(v)
		if err != nil {
			return fmt.Sprintf("Error filtering tasks: %v", err), nil
		}
		f.Status = status
	}
	if v := stringArg(args, "priority"); v != "" {
		priority, err := task.NormalizePriority(v)
		if err != nil {
			return fmt.Sprintf("Error filtering tasks: %v", err), nil
		}
		f.Priority = priority
	}
	items, err := t.store.Snapshot(ctx, f)
	if err != nil {
		return fmt.Sprintf("Error filtering tasks: %v", err), nil
	}
	if len(items) == 0 {
		return "No tasks found with specified filters", nil
	}
	return "Filtered tasks:\n" + renderTasks(items), nil
}

type checkDuplicateTool struct {
	store     *task.Store
	threshold float64
}

func (t *checkDuplicateTool) Manifest() types.ToolManifest {
	return types.ToolManifest{
		Name:        "check_duplicate",
		Description: "Check whether a very similar task already exists before creating one. Returns {\"exists\": bool, \"task_id\": int or null}.",
		Mutating:    false,
		Parameters: map[string]interface{}{
			"title": map[string]interface{}{"type": "string"},
		},
		Required: []string{"title"},
	}
}

func (t *checkDuplicateTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	title := stringArg(args, "title")
	match, found, err := t.store.FindSimilar(ctx, title, t.threshold)
	if err != nil {
		return fmt.Sprintf("Error checking duplicates: %v", err), nil
	}
	result := map[string]interface{}{"exists": found, "task_id": nil}
	if found {
		result["task_id"] = match.ID
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func renderTasks(items []task.Task) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		line := fmt.Sprintf("ID: %d, Title: %s, Status: %s, Priority: %s", item.ID, item.Title, item.Status, item.Priority)
		if p := item.Payload(); p.DueDate != nil {
			line += ", Due: " + *p.DueDate
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key]; ok {
		if s, isStr := v.(string); isStr {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// intArg tolerates the number encodings JSON decoding can yield plus
// models that quote integers.
func intArg(args map[string]interface{}, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		var n int64
		if _, err := fmt.Sscan(strings.TrimSpace(v), &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

func dueArg(args map[string]interface{}) (int64, error) {
	raw := stringArg(args, "due_date")
	if raw == "" {
		return 0, nil
	}
	return task.ParseDueDate(raw)
}
