package db

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrFocusSessionRunning is returned when a user already has a running session
var ErrFocusSessionRunning = errors.New("db: a focus session is already running")

const focusColumns = `id, user_id, task_id, status, planned_minutes, started_at, ended_at`

// StartFocusSession creates a running focus session for a user.
// The one-running-session invariant is enforced by a partial unique index.
func (d *DB) StartFocusSession(userID string, taskID *string, plannedMinutes int) (*FocusSession, error) {
	if plannedMinutes <= 0 {
		plannedMinutes = 25
	}

	f := &FocusSession{
		ID:             uuid.NewString(),
		UserID:         userID,
		TaskID:         taskID,
		Status:         FocusStatusRunning,
		PlannedMinutes: plannedMinutes,
		StartedAt:      NowMs(),
	}

	_, err := d.conn.Exec(`
		INSERT INTO focus_sessions (id, user_id, task_id, status, planned_minutes, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
	`, f.ID, f.UserID, NullString(f.TaskID), f.Status, f.PlannedMinutes, f.StartedAt)
	if err != nil {
		if strings.Contains(err.Error(), "idx_focus_one_running") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrFocusSessionRunning
		}
		return nil, err
	}

	return f, nil
}

// GetFocusSession retrieves a focus session the user owns, nil if not found
func (d *DB) GetFocusSession(userID, id string) (*FocusSession, error) {
	row := d.conn.QueryRow(
		`SELECT `+focusColumns+` FROM focus_sessions WHERE id = ? AND user_id = ?`, id, userID)

	f, err := scanFocusSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ActiveFocusSession returns the user's running session, nil if none
func (d *DB) ActiveFocusSession(userID string) (*FocusSession, error) {
	row := d.conn.QueryRow(`
		SELECT `+focusColumns+` FROM focus_sessions
		WHERE user_id = ? AND status = ?
	`, userID, FocusStatusRunning)

	f, err := scanFocusSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// FinishFocusSession transitions a running session to completed or abandoned.
// Returns false if the session is not currently running.
func (d *DB) FinishFocusSession(userID, id, status string) (bool, error) {
	result, err := d.conn.Exec(`
		UPDATE focus_sessions
		SET status = ?, ended_at = ?
		WHERE id = ? AND user_id = ? AND status = ?
	`, status, NowMs(), id, userID, FocusStatusRunning)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// ListFocusSessions returns a user's sessions, newest first
func (d *DB) ListFocusSessions(userID string, limit int) ([]FocusSession, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := d.conn.Query(`
		SELECT `+focusColumns+` FROM focus_sessions
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []FocusSession
	for rows.Next() {
		f, err := scanFocusSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, f)
	}
	return sessions, rows.Err()
}

// AbandonStaleFocusSessions abandons running sessions started before cutoff.
// Used by the janitor to clean up after closed clients.
func (d *DB) AbandonStaleFocusSessions(cutoff int64) (int64, error) {
	result, err := d.conn.Exec(`
		UPDATE focus_sessions
		SET status = ?, ended_at = ?
		WHERE status = ? AND started_at < ?
	`, FocusStatusAbandoned, NowMs(), FocusStatusRunning, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// FocusMinutesByDay returns completed focus minutes per local day over the
// last `days` days, keyed by YYYY-MM-DD.
func (d *DB) FocusMinutesByDay(userID string, days int) (map[string]int, error) {
	since := time.Now().AddDate(0, 0, -days).UnixMilli()

	rows, err := d.conn.Query(`
		SELECT date(started_at / 1000, 'unixepoch', 'localtime') AS day,
			CAST(SUM((ended_at - started_at) / 60000) AS INTEGER)
		FROM focus_sessions
		WHERE user_id = ? AND status = ? AND ended_at IS NOT NULL AND started_at >= ?
		GROUP BY day
	`, userID, FocusStatusCompleted, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var day string
		var minutes int
		if err := rows.Scan(&day, &minutes); err != nil {
			return nil, err
		}
		result[day] = minutes
	}
	return result, rows.Err()
}
