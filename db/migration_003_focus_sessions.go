package db

import "database/sql"

func init() {
	RegisterMigration(Migration{
		Version:     3,
		Description: "focus sessions",
		Up:          migration003Up,
	})
}

func migration003Up(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE focus_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			task_id TEXT REFERENCES tasks(id) ON DELETE SET NULL,
			status TEXT NOT NULL DEFAULT 'running'
				CHECK (status IN ('running', 'completed', 'abandoned')),
			planned_minutes INTEGER NOT NULL DEFAULT 25,
			started_at INTEGER NOT NULL,
			ended_at INTEGER
		);

		CREATE INDEX idx_focus_user_started ON focus_sessions(user_id, started_at);
		-- at most one running session per user
		CREATE UNIQUE INDEX idx_focus_one_running
			ON focus_sessions(user_id) WHERE status = 'running';
	`)
	return err
}
