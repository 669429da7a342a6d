package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/tasklist/internal/apperror"
	"github.com/sakif/tasklist/internal/model"
	"github.com/sakif/tasklist/internal/repository"
)

// compile-time check that *DB implements repository.TaskRepository
var _ repository.TaskRepository = (*DB)(nil)

// THE OWNERSHIP PREDICATE:
// Every statement below that touches an existing task filters on
//
//	WHERE id = ? AND user_id = ?
//
// in the SQL itself. There is deliberately no GetTaskByID in this package.
// If the row exists but belongs to someone else, the query affects zero
// rows and the caller gets apperror.ErrNotFound — exactly what they'd get
// for a task that never existed. One user can't even confirm that another
// user's task ID is real.

// CreateForOwner inserts a new task. task.UserID must already be set by the
// caller from the AUTHENTICATED identity — it is never read from client
// input, so a client cannot create a task "as" another user.
func (db *DB) CreateForOwner(ctx context.Context, task *model.Task) error {
	task.ID = xid.New().String()

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, is_completed, priority, due_date, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Title,
		task.Description,
		task.IsCompleted,
		string(task.Priority),
		task.DueDate,
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	return nil
}

// ListByOwner returns all of one user's tasks, newest first.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, description, is_completed, priority, due_date, user_id, created_at, updated_at
		 FROM tasks
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks: %w", err)
	}
	// rows holds a pool connection until closed — never skip this.
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateOwned applies a partial patch to a task, but only if ownerID owns
// it. Returns the updated task, or apperror.ErrNotFound when the task is
// absent OR owned by someone else (indistinguishable on purpose).
//
// COALESCE PATCH TRICK:
// Each patch field is bound twice — once as the candidate value, once
// checked for NULL. COALESCE(?, column) keeps the existing column value
// when the patch field is nil, so the whole partial update is a single
// statement and the ownership predicate guards it atomically. No
// read-modify-write window, no fetch-then-compare.
func (db *DB) UpdateOwned(ctx context.Context, taskID, ownerID string, patch repository.TaskPatch) (*model.Task, error) {
	var priority *string
	if patch.Priority != nil {
		p := string(*patch.Priority)
		priority = &p
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE tasks
		 SET title        = COALESCE(?, title),
		     description  = COALESCE(?, description),
		     is_completed = COALESCE(?, is_completed),
		     priority     = COALESCE(?, priority),
		     due_date     = COALESCE(?, due_date),
		     updated_at   = ?
		 WHERE id = ? AND user_id = ?`,
		patch.Title,
		patch.Description,
		patch.IsCompleted,
		priority,
		patch.DueDate,
		time.Now(),
		taskID,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating task %s: %w", taskID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("task", taskID)
	}

	return db.getOwnedTask(ctx, taskID, ownerID)
}

// DeleteOwned removes a task, but only if ownerID owns it. Same
// not-found-or-not-owned contract as UpdateOwned.
func (db *DB) DeleteOwned(ctx context.Context, taskID, ownerID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`,
		taskID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %s: %w", taskID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", taskID)
	}

	return nil
}

// getOwnedTask reads back a single task under the same ownership predicate.
// Only called after an owned mutation succeeded, to return the fresh row.
func (db *DB) getOwnedTask(ctx context.Context, taskID, ownerID string) (*model.Task, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, title, description, is_completed, priority, due_date, user_id, created_at, updated_at
		 FROM tasks
		 WHERE id = ? AND user_id = ?`,
		taskID, ownerID,
	)

	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("task", taskID)
		}
		return nil, fmt.Errorf("sqlite: getting task %s: %w", taskID, err)
	}

	return &task, nil
}

// scanner covers both *sql.Row and *sql.Rows so list and single-row reads
// share one scan routine.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var (
		task    model.Task
		dueDate sql.NullTime
	)

	err := s.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.IsCompleted,
		&task.Priority,
		&dueDate,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}

	return task, nil
}
