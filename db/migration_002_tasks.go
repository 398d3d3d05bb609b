package db

import "database/sql"

func init() {
	RegisterMigration(Migration{
		Version:     2,
		Description: "tasks table with kanban sort ranks",
		Up:          migration002Up,
	})
}

func migration002Up(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'todo'
				CHECK (status IN ('todo', 'in-progress', 'completed')),
			priority TEXT NOT NULL DEFAULT 'medium'
				CHECK (priority IN ('low', 'medium', 'high')),
			due_date INTEGER,
			sort_rank REAL NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			completed_at INTEGER,
			reminded_at INTEGER
		);

		CREATE INDEX idx_tasks_board ON tasks(user_id, status, sort_rank);
		CREATE INDEX idx_tasks_due ON tasks(due_date) WHERE due_date IS NOT NULL;
	`)
	return err
}
