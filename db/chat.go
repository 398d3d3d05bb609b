package db

import (
	"database/sql"

	"github.com/google/uuid"
)

// CreateConversation starts a new chat thread for a user
func (d *DB) CreateConversation(userID, title string) (*Conversation, error) {
	now := NowMs()
	c := &Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := d.conn.Exec(`
		INSERT INTO chat_conversations (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.Title, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// GetConversation retrieves a conversation the user owns, nil if not found
func (d *DB) GetConversation(userID, id string) (*Conversation, error) {
	var c Conversation
	err := d.conn.QueryRow(`
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_conversations
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConversations returns a user's conversations, most recently active first
func (d *DB) ListConversations(userID string) ([]Conversation, error) {
	rows, err := d.conn.Query(`
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_conversations
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// TouchConversation bumps updated_at and optionally retitles the thread
func (d *DB) TouchConversation(id string, title string) error {
	if title != "" {
		_, err := d.conn.Exec(`
			UPDATE chat_conversations SET title = ?, updated_at = ? WHERE id = ?
		`, title, NowMs(), id)
		return err
	}
	_, err := d.conn.Exec(`
		UPDATE chat_conversations SET updated_at = ? WHERE id = ?
	`, NowMs(), id)
	return err
}

// DeleteConversation removes a conversation and its messages (cascade).
// Returns false if it did not exist for this user.
func (d *DB) DeleteConversation(userID, id string) (bool, error) {
	result, err := d.conn.Exec(`
		DELETE FROM chat_conversations WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// AppendMessage stores a chat message
func (d *DB) AppendMessage(conversationID, role, content string, toolCalls, toolCallID *string) (*Message, error) {
	m := &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		ToolCalls:      toolCalls,
		ToolCallID:     toolCallID,
		CreatedAt:      NowMs(),
	}

	_, err := d.conn.Exec(`
		INSERT INTO chat_messages (id, conversation_id, role, content, tool_calls, tool_call_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ConversationID, m.Role, m.Content,
		NullString(m.ToolCalls), NullString(m.ToolCallID), m.CreatedAt)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// ListMessages returns a conversation's messages in chronological order
func (d *DB) ListMessages(conversationID string) ([]Message, error) {
	rows, err := d.conn.Query(`
		SELECT id, conversation_id, role, content, tool_calls, tool_call_id, created_at
		FROM chat_messages
		WHERE conversation_id = ?
		ORDER BY created_at, id
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// RecentMessages returns the last n messages in chronological order, used to
// cap the context window sent to the model
func (d *DB) RecentMessages(conversationID string, n int) ([]Message, error) {
	rows, err := d.conn.Query(`
		SELECT id, conversation_id, role, content, tool_calls, tool_call_id, created_at
		FROM chat_messages
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, conversationID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
