package task

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Fareedsea/todo-chatbot/internal/db"
)

// Store persists tasks in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a task store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new task for the owner and returns it.
func (s *Store) Create(ctx context.Context, ownerID, title string) (*Task, error) {
	now := time.Now().UTC()
	t := &Task{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, owner_id, title, completed, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		t.ID, t.OwnerID, t.Title, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}

	return t, nil
}

// List returns the owner's tasks, oldest first.
func (s *Store) List(ctx context.Context, ownerID string, filter ListFilter) ([]*Task, error) {
	query := `SELECT id, owner_id, title, completed, created_at, updated_at
	          FROM tasks WHERE owner_id = ?`
	args := []any{ownerID}
	if filter.Completed != nil {
		query += ` AND completed = ?`
		completed := 0
		if *filter.Completed {
			completed = 1
		}
		args = append(args, completed)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Get returns a single task owned by ownerID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id, ownerID string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, completed, created_at, updated_at
		 FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return t, err
}

// Update renames a task. Absent and foreign rows are both ErrNotFound.
func (s *Store) Update(ctx context.Context, id, ownerID, title string) (*Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		strings.TrimSpace(title), time.Now().UTC(), id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id, ownerID)
}

// Complete marks a task done. Completing an already-completed task is a
// no-op success.
func (s *Store) Complete(ctx context.Context, id, ownerID string) (*Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completed = 1, updated_at = ? WHERE id = ? AND owner_id = ?`,
		time.Now().UTC(), id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("completing task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id, ownerID)
}

// Delete removes a task. Deleting a missing task returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id, ownerID string) (*Task, error) {
	t, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return nil, fmt.Errorf("deleting task: %w", err)
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*Task, error) {
	var t Task
	var completed int
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Completed = completed != 0
	return &t, nil
}
