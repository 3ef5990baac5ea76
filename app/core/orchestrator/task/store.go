package task

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskmate/app/core/orchestrator/db"
)

// snapshotOrder is the single ordering contract for every snapshot query:
// due date ascending with no-deadline tasks last, then priority high
// before medium before low, then id as a stable tiebreak.
const snapshotOrder = ` ORDER BY (due_date IS NULL) ASC, due_date ASC,
CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 ELSE 3 END ASC,
id ASC`

const taskColumns = `id, title, description, status, priority, due_date, created_at, updated_at`

type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new task. Empty priority defaults to medium; dueDate
// zero stores NULL.
func (s *Store) Create(ctx context.Context, title, description, priority string, dueDate int64) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, fmt.Errorf("title is required")
	}
	if priority == "" {
		priority = PriorityMedium
	}
	normalized, err := NormalizePriority(priority)
	if err != nil {
		return Task{}, err
	}

	now := time.Now().Unix()
	res, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, priority, due_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title, description, StatusInProgress, normalized, nullableUnix(dueDate), now, now)
	if err != nil {
		return Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Task{}, err
	}
	return Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      StatusInProgress,
		Priority:    normalized,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Store) Get(ctx context.Context, id int64) (Task, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// Update carries the fields of a partial task update. A nil field leaves
// the column alone; a DueDate pointer to zero clears the deadline.
type Update struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *int64
}

// Update applies upd to one task and refreshes updated_at. Returns
// sql.ErrNoRows when the task does not exist.
func (s *Store) Update(ctx context.Context, id int64, upd Update) (Task, error) {
	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return Task{}, fmt.Errorf("title cannot be empty")
		}
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Status != nil {
		status, err := NormalizeStatus(*upd.Status)
		if err != nil {
			return Task{}, err
		}
		sets = append(sets, "status = ?")
		args = append(args, status)
	}
	if upd.Priority != nil {
		priority, err := NormalizePriority(*upd.Priority)
		if err != nil {
			return Task{}, err
		}
		sets = append(sets, "priority = ?")
		args = append(args, priority)
	}
	if upd.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, nullableUnix(*upd.DueDate))
	}

	if len(sets) == 0 {
		return s.Get(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().Unix())
	args = append(args, id)

	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return Task{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Task{}, err
	}
	if affected == 0 {
		return Task{}, sql.ErrNoRows
	}
	return s.Get(ctx, id)
}

// Delete removes one task. Returns sql.ErrNoRows when the task does not
// exist.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Snapshot returns a point-in-time ordered list of tasks matching the
// filter. The zero filter returns every task; ordering is identical for
// filtered and unfiltered reads.
func (s *Store) Snapshot(ctx context.Context, f Filter) ([]Task, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		clauses = append(clauses, "priority = ?")
		args = append(args, f.Priority)
	}
	if f.DueRequired {
		clauses = append(clauses, "due_date IS NOT NULL")
	}
	if f.DueFrom != 0 {
		clauses = append(clauses, "due_date >= ?")
		args = append(args, f.DueFrom)
	}
	if f.DueUntil != 0 {
		clauses = append(clauses, "due_date < ?")
		args = append(args, f.DueUntil)
	}
	for _, status := range f.ExcludeStatuses {
		clauses = append(clauses, "status != ?")
		args = append(args, status)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += snapshotOrder

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Task, 0, 16)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// All is the full unfiltered snapshot.
func (s *Store) All(ctx context.Context) ([]Task, error) {
	return s.Snapshot(ctx, Filter{})
}

// FindSimilar returns the first task whose title is at least threshold
// similar to the given title (difflib-style ratio).
func (s *Store) FindSimilar(ctx context.Context, title string, threshold float64) (Task, bool, error) {
	items, err := s.All(ctx)
	if err != nil {
		return Task{}, false, err
	}
	needle := strings.ToLower(strings.TrimSpace(title))
	for _, t := range items {
		if Ratio(strings.ToLower(t.Title), needle) >= threshold {
			return t, true, nil
		}
	}
	return Task{}, false, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t   Task
		due sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Task{}, err
	}
	if due.Valid {
		t.DueDate = due.Int64
	}
	return t, nil
}

func nullableUnix(sec int64) interface{} {
	if sec == 0 {
		return nil
	}
	return sec
}
