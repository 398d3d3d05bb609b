package db

import (
	"time"
)

// TaskCounts holds board-level task totals
type TaskCounts struct {
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Overdue    int64 `json:"overdue"`
}

// CountTasks returns task totals per column plus overdue count
func (d *DB) CountTasks(userID string) (*TaskCounts, error) {
	var c TaskCounts

	rows, err := d.conn.Query(`
		SELECT status, COUNT(*) FROM tasks WHERE user_id = ? GROUP BY status
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		switch status {
		case TaskStatusTodo:
			c.Todo = count
		case TaskStatusInProgress:
			c.InProgress = count
		case TaskStatusCompleted:
			c.Completed = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = d.conn.QueryRow(`
		SELECT COUNT(*) FROM tasks
		WHERE user_id = ? AND status != ? AND due_date IS NOT NULL AND due_date < ?
	`, userID, TaskStatusCompleted, NowMs()).Scan(&c.Overdue)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// CompletionsByDay returns completed-task counts per local day over the last
// `days` days, keyed by YYYY-MM-DD.
func (d *DB) CompletionsByDay(userID string, days int) (map[string]int, error) {
	since := time.Now().AddDate(0, 0, -days).UnixMilli()

	rows, err := d.conn.Query(`
		SELECT date(completed_at / 1000, 'unixepoch', 'localtime') AS day, COUNT(*)
		FROM tasks
		WHERE user_id = ? AND completed_at IS NOT NULL AND completed_at >= ?
		GROUP BY day
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		result[day] = count
	}
	return result, rows.Err()
}

// streakLookbackDays bounds how far back streaks are computed
const streakLookbackDays = 365

// CompletionStreaks returns the user's current and longest runs of
// consecutive days with at least one task completion, looking back up to a
// year. Today counts toward the current streak once a completion lands, but
// an empty today does not break a streak still in progress.
func (d *DB) CompletionStreaks(userID string) (current, longest int, err error) {
	byDay, err := d.CompletionsByDay(userID, streakLookbackDays)
	if err != nil {
		return 0, 0, err
	}

	today := time.Now()
	dayKey := func(offset int) string {
		return today.AddDate(0, 0, -offset).Format("2006-01-02")
	}

	start := 0
	if byDay[dayKey(0)] == 0 {
		start = 1
	}
	for i := start; byDay[dayKey(i)] > 0; i++ {
		current++
	}

	run := 0
	for i := streakLookbackDays; i >= 0; i-- {
		if byDay[dayKey(i)] > 0 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	return current, longest, nil
}

// CompletionsByPriority returns completed-task counts per priority
func (d *DB) CompletionsByPriority(userID string) (map[string]int, error) {
	rows, err := d.conn.Query(`
		SELECT priority, COUNT(*) FROM tasks
		WHERE user_id = ? AND status = ?
		GROUP BY priority
	`, userID, TaskStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var priority string
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		result[priority] = count
	}
	return result, rows.Err()
}

// FocusSessionCounts returns total and completed focus session counts plus
// total completed minutes
func (d *DB) FocusSessionCounts(userID string) (total, completed, minutes int64, err error) {
	err = d.conn.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? AND ended_at IS NOT NULL
				THEN (ended_at - started_at) / 60000 ELSE 0 END), 0)
		FROM focus_sessions
		WHERE user_id = ?
	`, FocusStatusCompleted, FocusStatusCompleted, userID).Scan(&total, &completed, &minutes)
	return total, completed, minutes, err
}
