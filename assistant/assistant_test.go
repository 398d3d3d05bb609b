package assistant

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/focusflow-app/focusflow/db"
	openai "github.com/sashabaranov/go-openai"
)

// scriptedClient returns canned responses in order
type scriptedClient struct {
	responses []openai.ChatCompletionResponse
	requests  []openai.ChatCompletionRequest
}

func (c *scriptedClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.requests = append(c.requests, req)
	if len(c.responses) == 0 {
		return openai.ChatCompletionResponse{}, nil
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	}
}

func toolCallResponse(callID, name, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:   callID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      name,
						Arguments: arguments,
					},
				}},
			},
		}},
	}
}

// fakeStore records tool executions against an in-memory task map
type fakeStore struct {
	tasks   map[string]*db.Task
	created []db.NewTask
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[string]*db.Task)}
}

func (s *fakeStore) CreateTask(userID string, nt db.NewTask) (*db.Task, error) {
	s.created = append(s.created, nt)
	t := &db.Task{
		ID:     "task-new",
		UserID: userID,
		Title:  nt.Title,
		Status: nt.Status,
	}
	if t.Status == "" {
		t.Status = db.TaskStatusTodo
	}
	s.tasks[t.ID] = t
	return t, nil
}

func (s *fakeStore) GetTask(userID, id string) (*db.Task, error) {
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return t, nil
}

func (s *fakeStore) ListTasks(userID string, f db.TaskFilter) ([]db.Task, error) {
	var out []db.Task
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *fakeStore) UpdateTask(userID, id string, upd db.TaskUpdate) (*db.Task, error) {
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	return t, nil
}

func (s *fakeStore) DeleteTask(userID, id string) (bool, error) {
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(s.tasks, id)
	s.deleted = append(s.deleted, id)
	return true, nil
}

func TestReply_PlainAnswerWithoutTools(t *testing.T) {
	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		textResponse("You have nothing due today."),
	}}
	a := New(client, newFakeStore(), "test-model")

	produced, err := a.Reply(context.Background(), "user-1", nil, "anything due today?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(produced) != 1 {
		t.Fatalf("expected 1 message, got %d", len(produced))
	}
	if produced[0].Content != "You have nothing due today." {
		t.Errorf("unexpected content: %q", produced[0].Content)
	}

	// The request must carry the system prompt, then the user turn
	req := client.requests[0]
	if req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("first message should be system, got %s", req.Messages[0].Role)
	}
	if len(req.Tools) == 0 {
		t.Error("tools should be advertised to the model")
	}
}

func TestReply_ExecutesToolCallAndContinues(t *testing.T) {
	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call-1", "create_task", `{"title": "Write report", "priority": "high"}`),
		textResponse("Created \"Write report\"."),
	}}
	store := newFakeStore()
	a := New(client, store, "test-model")

	produced, err := a.Reply(context.Background(), "user-1", nil, "add a task to write the report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// tool-call message, tool result, final answer
	if len(produced) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(produced))
	}
	if produced[1].Role != openai.ChatMessageRoleTool {
		t.Errorf("second message should be a tool result, got %s", produced[1].Role)
	}
	if produced[1].ToolCallID != "call-1" {
		t.Errorf("tool result should answer call-1, got %q", produced[1].ToolCallID)
	}
	if produced[2].Content != "Created \"Write report\"." {
		t.Errorf("unexpected final content: %q", produced[2].Content)
	}

	if len(store.created) != 1 || store.created[0].Title != "Write report" {
		t.Errorf("store should have one created task titled 'Write report', got %+v", store.created)
	}

	// Second request must include the tool result so the model sees it
	second := client.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != openai.ChatMessageRoleTool {
		t.Errorf("second request should end with the tool result, got %s", last.Role)
	}
}

func TestReply_MalformedArgumentsBecomeToolError(t *testing.T) {
	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call-1", "create_task", `{"title": `),
		textResponse("Sorry, that failed."),
	}}
	a := New(client, newFakeStore(), "test-model")

	produced, err := a.Reply(context.Background(), "user-1", nil, "add a task")
	if err != nil {
		t.Fatalf("loop should survive malformed arguments, got: %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(produced[1].Content), &payload); err != nil {
		t.Fatalf("tool result should be JSON, got %q", produced[1].Content)
	}
	if payload["error"] == "" {
		t.Error("tool result should carry an error message")
	}
}

func TestReply_UnknownTaskScopedToUser(t *testing.T) {
	store := newFakeStore()
	store.tasks["task-other"] = &db.Task{ID: "task-other", UserID: "someone-else"}

	client := &scriptedClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call-1", "delete_task", `{"task_id": "task-other"}`),
		textResponse("I could not find that task."),
	}}
	a := New(client, store, "test-model")

	produced, err := a.Reply(context.Background(), "user-1", nil, "delete that task")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(produced[1].Content, "not found") {
		t.Errorf("foreign task should look missing, got %q", produced[1].Content)
	}
	if len(store.deleted) != 0 {
		t.Errorf("no deletion should have happened, got %v", store.deleted)
	}
}

func TestReply_IterationLimitForcesAnswer(t *testing.T) {
	// The model keeps asking for list_tasks forever
	var responses []openai.ChatCompletionResponse
	for i := 0; i < MaxToolIterations; i++ {
		responses = append(responses, toolCallResponse("call", "list_tasks", `{}`))
	}
	responses = append(responses, textResponse("Here is what I found."))

	client := &scriptedClient{responses: responses}
	a := New(client, newFakeStore(), "test-model")

	produced, err := a.Reply(context.Background(), "user-1", nil, "loop forever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	final := produced[len(produced)-1]
	if final.Content != "Here is what I found." {
		t.Errorf("expected forced final answer, got %q", final.Content)
	}

	// The forcing request must not advertise tools
	lastReq := client.requests[len(client.requests)-1]
	if len(lastReq.Tools) != 0 {
		t.Error("final request after iteration limit should not offer tools")
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	a := New(&scriptedClient{}, newFakeStore(), "test-model")

	result := a.executeTool("user-1", "launch_rocket", `{}`)
	if !strings.Contains(result, "unknown tool") {
		t.Errorf("expected unknown tool error, got %q", result)
	}
}
