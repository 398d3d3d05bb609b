package db

import (
	"database/sql"
	"time"
)

// Task status values
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

// Task priority values
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Focus session status values
const (
	FocusStatusRunning   = "running"
	FocusStatusCompleted = "completed"
	FocusStatusAbandoned = "abandoned"
)

// User represents an account record
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	DisplayName  string `json:"displayName"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
}

// Session represents a refresh session record
type Session struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	CreatedAt  int64  `json:"createdAt"`
	ExpiresAt  int64  `json:"expiresAt"`
	LastUsedAt int64  `json:"lastUsedAt"`
}

// Task represents a user-owned to-do item on the kanban board
type Task struct {
	ID          string  `json:"id"`
	UserID      string  `json:"-"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *int64  `json:"dueDate,omitempty"`
	SortRank    float64 `json:"sortRank"`
	CreatedAt   int64   `json:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt"`
	CompletedAt *int64  `json:"completedAt,omitempty"`
	RemindedAt  *int64  `json:"-"`
}

// FocusSession represents a timed work interval
type FocusSession struct {
	ID             string  `json:"id"`
	UserID         string  `json:"-"`
	TaskID         *string `json:"taskId,omitempty"`
	Status         string  `json:"status"`
	PlannedMinutes int     `json:"plannedMinutes"`
	StartedAt      int64   `json:"startedAt"`
	EndedAt        *int64  `json:"endedAt,omitempty"`
}

// Conversation represents a chat thread with the assistant
type Conversation struct {
	ID        string `json:"id"`
	UserID    string `json:"-"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Message represents a single chat message.
// ToolCalls carries the serialized tool-call payload for assistant messages;
// ToolCallID links a tool-role message to the call it answers.
type Message struct {
	ID             string  `json:"id"`
	ConversationID string  `json:"conversationId"`
	Role           string  `json:"role"`
	Content        string  `json:"content"`
	ToolCalls      *string `json:"toolCalls,omitempty"`
	ToolCallID     *string `json:"toolCallId,omitempty"`
	CreatedAt      int64   `json:"createdAt"`
}

// Setting represents a settings record
type Setting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

// rowScanner matches both *sql.Row and *sql.Rows
type rowScanner interface{ Scan(...any) error }

// scanTask scans a row into a Task
func scanTask(row rowScanner) (Task, error) {
	var t Task
	var dueDate, completedAt, remindedAt sql.NullInt64
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&dueDate, &t.SortRank, &t.CreatedAt, &t.UpdatedAt, &completedAt, &remindedAt,
	)
	t.DueDate = IntPtr(dueDate)
	t.CompletedAt = IntPtr(completedAt)
	t.RemindedAt = IntPtr(remindedAt)
	return t, err
}

// scanFocusSession scans a row into a FocusSession
func scanFocusSession(row rowScanner) (FocusSession, error) {
	var f FocusSession
	var taskID sql.NullString
	var endedAt sql.NullInt64
	err := row.Scan(
		&f.ID, &f.UserID, &taskID, &f.Status, &f.PlannedMinutes,
		&f.StartedAt, &endedAt,
	)
	f.TaskID = StringPtr(taskID)
	f.EndedAt = IntPtr(endedAt)
	return f, err
}

// scanMessage scans a row into a Message
func scanMessage(row rowScanner) (Message, error) {
	var m Message
	var toolCalls, toolCallID sql.NullString
	err := row.Scan(
		&m.ID, &m.ConversationID, &m.Role, &m.Content,
		&toolCalls, &toolCallID, &m.CreatedAt,
	)
	m.ToolCalls = StringPtr(toolCalls)
	m.ToolCallID = StringPtr(toolCallID)
	return m, err
}

// NowMs returns the current time as Unix milliseconds (int64)
func NowMs() int64 {
	return time.Now().UnixMilli()
}

// NullString converts *string to sql.NullString
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullInt converts *int64 to sql.NullInt64
func NullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// StringPtr converts sql.NullString to *string
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// IntPtr converts sql.NullInt64 to *int64
func IntPtr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}

// ValidTaskStatus reports whether s is a known task status
func ValidTaskStatus(s string) bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress || s == TaskStatusCompleted
}

// ValidTaskPriority reports whether p is a known task priority
func ValidTaskPriority(p string) bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}
