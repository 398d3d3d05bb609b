package assistant

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/focusflow-app/focusflow/db"
	openai "github.com/sashabaranov/go-openai"
)

// TaskStore is the slice of the task layer the assistant's tools need.
// *db.DB satisfies it; tests use a fake.
type TaskStore interface {
	CreateTask(userID string, nt db.NewTask) (*db.Task, error)
	GetTask(userID, id string) (*db.Task, error)
	ListTasks(userID string, f db.TaskFilter) ([]db.Task, error)
	UpdateTask(userID, id string, upd db.TaskUpdate) (*db.Task, error)
	DeleteTask(userID, id string) (bool, error)
}

// toolDefinitions returns the function schemas advertised to the model
func toolDefinitions() []openai.Tool {
	statusEnum := []string{db.TaskStatusTodo, db.TaskStatusInProgress, db.TaskStatusCompleted}
	priorityEnum := []string{db.TaskPriorityLow, db.TaskPriorityMedium, db.TaskPriorityHigh}

	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "create_task",
				Description: "Create a new task on the user's board.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":       map[string]any{"type": "string", "description": "Short task title"},
						"description": map[string]any{"type": "string"},
						"status":      map[string]any{"type": "string", "enum": statusEnum},
						"priority":    map[string]any{"type": "string", "enum": priorityEnum},
						"due_date":    map[string]any{"type": "string", "description": "Due date as YYYY-MM-DD, omit if none"},
					},
					"required": []string{"title"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "update_task",
				Description: "Update fields of an existing task. Only provided fields change.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"task_id":     map[string]any{"type": "string"},
						"title":       map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"status":      map[string]any{"type": "string", "enum": statusEnum},
						"priority":    map[string]any{"type": "string", "enum": priorityEnum},
						"due_date":    map[string]any{"type": "string", "description": "YYYY-MM-DD, or empty string to clear"},
					},
					"required": []string{"task_id"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "complete_task",
				Description: "Mark a task as completed.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"task_id": map[string]any{"type": "string"},
					},
					"required": []string{"task_id"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "delete_task",
				Description: "Delete a task permanently.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"task_id": map[string]any{"type": "string"},
					},
					"required": []string{"task_id"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "list_tasks",
				Description: "List the user's tasks, optionally filtered by status or priority.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"status":   map[string]any{"type": "string", "enum": statusEnum},
						"priority": map[string]any{"type": "string", "enum": priorityEnum},
					},
				},
			},
		},
	}
}

// executeTool dispatches one tool call against the store, scoped to userID.
// Failures come back as a JSON error payload for the model, never as a Go
// error; only the store's unexpected failures abort the loop.
func (a *Assistant) executeTool(userID, name string, arguments string) string {
	result, err := a.dispatchTool(userID, name, arguments)
	if err != nil {
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(payload)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return `{"error": "failed to encode tool result"}`
	}
	return string(payload)
}

func (a *Assistant) dispatchTool(userID, name, arguments string) (any, error) {
	switch name {
	case "create_task":
		var args struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Status      string `json:"status"`
			Priority    string `json:"priority"`
			DueDate     string `json:"due_date"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.Title == "" {
			return nil, fmt.Errorf("title is required")
		}
		if args.Status != "" && !db.ValidTaskStatus(args.Status) {
			return nil, fmt.Errorf("unknown status %q", args.Status)
		}
		if args.Priority != "" && !db.ValidTaskPriority(args.Priority) {
			return nil, fmt.Errorf("unknown priority %q", args.Priority)
		}

		dueDate, err := parseDueDate(args.DueDate)
		if err != nil {
			return nil, err
		}

		return a.store.CreateTask(userID, db.NewTask{
			Title:       args.Title,
			Description: args.Description,
			Status:      args.Status,
			Priority:    args.Priority,
			DueDate:     dueDate,
		})

	case "update_task":
		var args struct {
			TaskID      string  `json:"task_id"`
			Title       *string `json:"title"`
			Description *string `json:"description"`
			Status      *string `json:"status"`
			Priority    *string `json:"priority"`
			DueDate     *string `json:"due_date"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.Status != nil && !db.ValidTaskStatus(*args.Status) {
			return nil, fmt.Errorf("unknown status %q", *args.Status)
		}
		if args.Priority != nil && !db.ValidTaskPriority(*args.Priority) {
			return nil, fmt.Errorf("unknown priority %q", *args.Priority)
		}

		upd := db.TaskUpdate{
			Title:       args.Title,
			Description: args.Description,
			Status:      args.Status,
			Priority:    args.Priority,
		}
		if args.DueDate != nil {
			if *args.DueDate == "" {
				var cleared *int64
				upd.DueDate = &cleared
			} else {
				dueDate, err := parseDueDate(*args.DueDate)
				if err != nil {
					return nil, err
				}
				upd.DueDate = &dueDate
			}
		}

		task, err := a.store.UpdateTask(userID, args.TaskID, upd)
		if err != nil {
			return nil, err
		}
		if task == nil {
			return nil, fmt.Errorf("task %s not found", args.TaskID)
		}
		return task, nil

	case "complete_task":
		var args struct {
			TaskID string `json:"task_id"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}

		status := db.TaskStatusCompleted
		task, err := a.store.UpdateTask(userID, args.TaskID, db.TaskUpdate{Status: &status})
		if err != nil {
			return nil, err
		}
		if task == nil {
			return nil, fmt.Errorf("task %s not found", args.TaskID)
		}
		return task, nil

	case "delete_task":
		var args struct {
			TaskID string `json:"task_id"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}

		deleted, err := a.store.DeleteTask(userID, args.TaskID)
		if err != nil {
			return nil, err
		}
		if !deleted {
			return nil, fmt.Errorf("task %s not found", args.TaskID)
		}
		return map[string]any{"deleted": true, "task_id": args.TaskID}, nil

	case "list_tasks":
		var args struct {
			Status   string `json:"status"`
			Priority string `json:"priority"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}

		tasks, err := a.store.ListTasks(userID, db.TaskFilter{
			Status:   args.Status,
			Priority: args.Priority,
		})
		if err != nil {
			return nil, err
		}
		if tasks == nil {
			tasks = []db.Task{}
		}
		return map[string]any{"tasks": tasks, "count": len(tasks)}, nil

	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

// parseDueDate converts a YYYY-MM-DD string to epoch ms, nil when empty
func parseDueDate(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due_date %q, want YYYY-MM-DD", s)
	}
	ms := t.UnixMilli()
	return &ms, nil
}
