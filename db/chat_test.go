package db

import (
	"fmt"
	"testing"
)

func TestConversationLifecycle(t *testing.T) {
	d := openTestDB(t)
	user := createTestUser(t, d, "chat@example.com")

	conv, err := d.CreateConversation(user.ID, "Planning")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := d.GetConversation(user.ID, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Title != "Planning" {
		t.Fatalf("unexpected conversation: %+v", got)
	}

	// Other users cannot see it
	other := createTestUser(t, d, "other-chat@example.com")
	got, err = d.GetConversation(other.ID, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("conversation should be private")
	}

	deleted, err := d.DeleteConversation(user.ID, conv.ID)
	if err != nil || !deleted {
		t.Fatalf("delete failed: deleted=%v err=%v", deleted, err)
	}
}

func TestDeleteConversationCascadesMessages(t *testing.T) {
	d := openTestDB(t)
	user := createTestUser(t, d, "cascade@example.com")

	conv, err := d.CreateConversation(user.ID, "Doomed")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.AppendMessage(conv.ID, "user", "hello", nil, nil); err != nil {
		t.Fatal(err)
	}

	if _, err := d.DeleteConversation(user.ID, conv.ID); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := d.Conn().QueryRow(
		`SELECT COUNT(*) FROM chat_messages WHERE conversation_id = ?`, conv.ID).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected cascaded delete, %d messages remain", count)
	}
}

func TestRecentMessagesReturnsLastNInOrder(t *testing.T) {
	d := openTestDB(t)
	user := createTestUser(t, d, "recent@example.com")

	conv, err := d.CreateConversation(user.ID, "Long thread")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if _, err := d.AppendMessage(conv.ID, "user", fmt.Sprintf("msg-%d", i), nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := d.RecentMessages(conv.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d messages, want 3", len(recent))
	}
	// Oldest of the window first
	want := []string{"msg-7", "msg-8", "msg-9"}
	for i := range want {
		if recent[i].Content != want[i] {
			t.Errorf("recent[%d] = %q, want %q", i, recent[i].Content, want[i])
		}
	}
}

func TestAppendMessageToolPayload(t *testing.T) {
	d := openTestDB(t)
	user := createTestUser(t, d, "tools@example.com")

	conv, err := d.CreateConversation(user.ID, "Tooling")
	if err != nil {
		t.Fatal(err)
	}

	calls := `[{"id":"call_1","type":"function","function":{"name":"create_task","arguments":"{}"}}]`
	if _, err := d.AppendMessage(conv.ID, "assistant", "", &calls, nil); err != nil {
		t.Fatal(err)
	}
	callID := "call_1"
	if _, err := d.AppendMessage(conv.ID, "tool", `{"ok":true}`, nil, &callID); err != nil {
		t.Fatal(err)
	}

	messages, err := d.ListMessages(conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].ToolCalls == nil || *messages[0].ToolCalls != calls {
		t.Error("assistant message lost its tool calls")
	}
	if messages[1].ToolCallID == nil || *messages[1].ToolCallID != "call_1" {
		t.Error("tool message lost its call id")
	}
}
