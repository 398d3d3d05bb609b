package db

import "database/sql"

func init() {
	RegisterMigration(Migration{
		Version:     4,
		Description: "chat conversations and messages",
		Up:          migration004Up,
	})
}

func migration004Up(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE chat_conversations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX idx_chat_conversations_user ON chat_conversations(user_id, updated_at);

		CREATE TABLE chat_messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL REFERENCES chat_conversations(id) ON DELETE CASCADE,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'tool')),
			content TEXT NOT NULL DEFAULT '',
			tool_calls TEXT,
			tool_call_id TEXT,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX idx_chat_messages_conversation ON chat_messages(conversation_id, created_at);
	`)
	return err
}
