package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/focusflow-app/focusflow/taskorder"
	"github.com/google/uuid"
)

// ErrNeighborMismatch is returned by MoveTask when the before/after task IDs
// do not exist in the target column for the same user.
var ErrNeighborMismatch = errors.New("db: neighbor task not in target column")

const taskColumns = `id, user_id, title, description, status, priority,
	due_date, sort_rank, created_at, updated_at, completed_at, reminded_at`

// TaskFilter narrows ListTasks results
type TaskFilter struct {
	Status    string
	Priority  string
	DueBefore *int64
	DueAfter  *int64
}

// NewTask holds the fields for task creation
type NewTask struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *int64
}

// TaskUpdate holds the mutable fields for a task update. Nil fields are left
// unchanged; DueDate uses a double pointer so callers can clear the date.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     **int64
}

// CreateTask inserts a task at the bottom of its column
func (d *DB) CreateTask(userID string, nt NewTask) (*Task, error) {
	if nt.Status == "" {
		nt.Status = TaskStatusTodo
	}
	if nt.Priority == "" {
		nt.Priority = TaskPriorityMedium
	}

	now := NowMs()
	t := &Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       nt.Title,
		Description: nt.Description,
		Status:      nt.Status,
		Priority:    nt.Priority,
		DueDate:     nt.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if nt.Status == TaskStatusCompleted {
		t.CompletedAt = &now
	}

	err := d.Transaction(func(tx *sql.Tx) error {
		// New tasks go to the bottom of their column
		var tail sql.NullFloat64
		err := tx.QueryRow(`
			SELECT MAX(sort_rank) FROM tasks WHERE user_id = ? AND status = ?
		`, userID, t.Status).Scan(&tail)
		if err != nil {
			return err
		}

		if tail.Valid {
			t.SortRank, err = taskorder.After(tail.Float64)
			if err != nil {
				return err
			}
		} else {
			t.SortRank = taskorder.InitialGap
		}

		_, err = tx.Exec(`
			INSERT INTO tasks (id, user_id, title, description, status, priority,
				due_date, sort_rank, created_at, updated_at, completed_at, reminded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
		`, t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority,
			NullInt(t.DueDate), t.SortRank, t.CreatedAt, t.UpdatedAt, NullInt(t.CompletedAt))
		return err
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// GetTask retrieves a task owned by userID, returns nil if not found
func (d *DB) GetTask(userID, id string) (*Task, error) {
	row := d.conn.QueryRow(
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns a user's tasks in board order, optionally filtered
func (d *DB) ListTasks(userID string, f TaskFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}

	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		query += " AND priority = ?"
		args = append(args, f.Priority)
	}
	if f.DueBefore != nil {
		query += " AND due_date IS NOT NULL AND due_date <= ?"
		args = append(args, *f.DueBefore)
	}
	if f.DueAfter != nil {
		query += " AND due_date IS NOT NULL AND due_date >= ?"
		args = append(args, *f.DueAfter)
	}

	query += " ORDER BY status, sort_rank"

	d.logQuery("select", query, args)
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask applies a partial update to a task the user owns.
// Returns nil if the task does not exist.
func (d *DB) UpdateTask(userID, id string, upd TaskUpdate) (*Task, error) {
	t, err := d.GetTask(userID, id)
	if err != nil || t == nil {
		return nil, err
	}

	prevStatus := t.Status
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.DueDate != nil {
		t.DueDate = *upd.DueDate
		// Due date changed: the reminder should fire again for the new date
		t.RemindedAt = nil
	}
	if upd.Status != nil && *upd.Status != prevStatus {
		t.Status = *upd.Status
	}
	t.UpdatedAt = NowMs()

	// completed_at tracks the status transition exactly
	if t.Status == TaskStatusCompleted && prevStatus != TaskStatusCompleted {
		now := t.UpdatedAt
		t.CompletedAt = &now
	} else if t.Status != TaskStatusCompleted {
		t.CompletedAt = nil
	}

	err = d.Transaction(func(tx *sql.Tx) error {
		// A status change outside MoveTask drops the task at the bottom of
		// its new column
		if t.Status != prevStatus {
			var tail sql.NullFloat64
			if err := tx.QueryRow(`
				SELECT MAX(sort_rank) FROM tasks WHERE user_id = ? AND status = ?
			`, userID, t.Status).Scan(&tail); err != nil {
				return err
			}
			if tail.Valid {
				rank, err := taskorder.After(tail.Float64)
				if err != nil {
					return err
				}
				t.SortRank = rank
			} else {
				t.SortRank = taskorder.InitialGap
			}
		}

		_, err := tx.Exec(`
			UPDATE tasks
			SET title = ?, description = ?, status = ?, priority = ?, due_date = ?,
				sort_rank = ?, updated_at = ?, completed_at = ?, reminded_at = ?
			WHERE id = ? AND user_id = ?
		`, t.Title, t.Description, t.Status, t.Priority, NullInt(t.DueDate),
			t.SortRank, t.UpdatedAt, NullInt(t.CompletedAt), NullInt(t.RemindedAt),
			id, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// DeleteTask removes a task the user owns. Returns false if it did not exist.
func (d *DB) DeleteTask(userID, id string) (bool, error) {
	result, err := d.conn.Exec(`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// MoveTask moves a task to a column position for drag-and-drop reordering.
// beforeID/afterID name the tasks that will precede/follow the moved task in
// the target column; either may be empty. When the fractional gap between the
// neighbors is exhausted the column is rebalanced in the same transaction and
// the rank recomputed.
func (d *DB) MoveTask(userID, id, status, beforeID, afterID string) (*Task, error) {
	t, err := d.GetTask(userID, id)
	if err != nil || t == nil {
		return nil, err
	}

	prevStatus := t.Status
	now := NowMs()

	err = d.Transaction(func(tx *sql.Tx) error {
		rank, err := rankForMove(tx, userID, id, status, beforeID, afterID)
		if err == taskorder.ErrGapExhausted {
			// Renumber the column with fresh spaced ranks, then retry once
			if err := rebalanceColumn(tx, userID, status, id); err != nil {
				return err
			}
			rank, err = rankForMove(tx, userID, id, status, beforeID, afterID)
			if err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		t.Status = status
		t.SortRank = rank
		t.UpdatedAt = now
		if status == TaskStatusCompleted && prevStatus != TaskStatusCompleted {
			t.CompletedAt = &now
		} else if status != TaskStatusCompleted {
			t.CompletedAt = nil
		}

		_, err = tx.Exec(`
			UPDATE tasks
			SET status = ?, sort_rank = ?, updated_at = ?, completed_at = ?
			WHERE id = ? AND user_id = ?
		`, t.Status, t.SortRank, t.UpdatedAt, NullInt(t.CompletedAt), id, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// rankForMove resolves the neighbor ranks and computes the new fractional rank
func rankForMove(tx *sql.Tx, userID, id, status, beforeID, afterID string) (float64, error) {
	var prev, next *float64

	if beforeID != "" {
		rank, err := columnRank(tx, userID, status, beforeID)
		if err != nil {
			return 0, err
		}
		prev = rank
	}
	if afterID != "" {
		rank, err := columnRank(tx, userID, status, afterID)
		if err != nil {
			return 0, err
		}
		next = rank
	}

	// With no neighbors given, the move targets the bottom of the column
	if prev == nil && next == nil {
		var tail sql.NullFloat64
		err := tx.QueryRow(`
			SELECT MAX(sort_rank) FROM tasks
			WHERE user_id = ? AND status = ? AND id != ?
		`, userID, status, id).Scan(&tail)
		if err != nil {
			return 0, err
		}
		if tail.Valid {
			return taskorder.After(tail.Float64)
		}
		return taskorder.InitialGap, nil
	}

	return taskorder.ForInsert(prev, next)
}

// columnRank returns the sort rank of a neighbor task, enforcing that it
// actually sits in the target column for the same user
func columnRank(tx *sql.Tx, userID, status, id string) (*float64, error) {
	var rank float64
	err := tx.QueryRow(`
		SELECT sort_rank FROM tasks WHERE id = ? AND user_id = ? AND status = ?
	`, id, userID, status).Scan(&rank)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNeighborMismatch, id)
	}
	if err != nil {
		return nil, err
	}
	return &rank, nil
}

// rebalanceColumn rewrites a column's ranks with fresh spacing. The moved
// task is excluded; it gets its rank from the retried midpoint computation.
func rebalanceColumn(tx *sql.Tx, userID, status, excludeID string) error {
	rows, err := tx.Query(`
		SELECT id FROM tasks
		WHERE user_id = ? AND status = ? AND id != ?
		ORDER BY sort_rank
	`, userID, status, excludeID)
	if err != nil {
		return err
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	ranks := taskorder.Rebalance(len(ids))
	for i, id := range ids {
		if _, err := tx.Exec(`UPDATE tasks SET sort_rank = ? WHERE id = ?`, ranks[i], id); err != nil {
			return err
		}
	}

	logger.Info().
		Str("status", status).
		Int("tasks", len(ids)).
		Msg("rebalanced column ranks")
	return nil
}

// TasksDueForReminder returns tasks with a due date at or before the horizon
// that are not completed and have not been reminded yet
func (d *DB) TasksDueForReminder(horizon int64) ([]Task, error) {
	rows, err := d.conn.Query(`
		SELECT `+taskColumns+` FROM tasks
		WHERE due_date IS NOT NULL
		AND due_date <= ?
		AND status != ?
		AND reminded_at IS NULL
		ORDER BY due_date
	`, horizon, TaskStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// MarkTaskReminded stamps reminded_at so the reminder fires once per due date
func (d *DB) MarkTaskReminded(id string) error {
	_, err := d.conn.Exec(`UPDATE tasks SET reminded_at = ? WHERE id = ?`, NowMs(), id)
	return err
}
