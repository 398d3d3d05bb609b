package api

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"

	"github.com/focusflow-app/focusflow/assistant"
	"github.com/focusflow-app/focusflow/db"
	"github.com/focusflow-app/focusflow/log"
)

// ListConversations handles GET /api/chat/conversations
func (h *Handlers) ListConversations(c *gin.Context) {
	conversations, err := h.server.DB().ListConversations(currentUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list conversations")
		RespondInternalError(c, "failed to list conversations")
		return
	}
	RespondList(c, conversations)
}

type createConversationRequest struct {
	Title string `json:"title"`
}

// CreateConversation handles POST /api/chat/conversations
func (h *Handlers) CreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondBadRequest(c, "invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "New conversation"
	}

	conversation, err := h.server.DB().CreateConversation(currentUserID(c), title)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create conversation")
		RespondInternalError(c, "failed to create conversation")
		return
	}
	RespondCreated(c, conversation)
}

// GetConversation handles GET /api/chat/conversations/:id
func (h *Handlers) GetConversation(c *gin.Context) {
	conversation, err := h.server.DB().GetConversation(currentUserID(c), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load conversation")
		RespondInternalError(c, "failed to load conversation")
		return
	}
	if conversation == nil {
		RespondNotFound(c, "conversation not found")
		return
	}
	RespondData(c, conversation)
}

// DeleteConversation handles DELETE /api/chat/conversations/:id
func (h *Handlers) DeleteConversation(c *gin.Context) {
	deleted, err := h.server.DB().DeleteConversation(currentUserID(c), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete conversation")
		RespondInternalError(c, "failed to delete conversation")
		return
	}
	if !deleted {
		RespondNotFound(c, "conversation not found")
		return
	}
	RespondNoContent(c)
}

// ListMessages handles GET /api/chat/conversations/:id/messages
func (h *Handlers) ListMessages(c *gin.Context) {
	conversation, err := h.server.DB().GetConversation(currentUserID(c), c.Param("id"))
	if err != nil {
		RespondInternalError(c, "failed to load conversation")
		return
	}
	if conversation == nil {
		RespondNotFound(c, "conversation not found")
		return
	}

	messages, err := h.server.DB().ListMessages(conversation.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list messages")
		RespondInternalError(c, "failed to list messages")
		return
	}
	RespondList(c, messages)
}

type postMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostMessage handles POST /api/chat/conversations/:id/messages. The user
// message and every message the assistant produces (including tool calls and
// tool results) are persisted, and the full batch is returned so the client
// can render the exchange without refetching.
func (h *Handlers) PostMessage(c *gin.Context) {
	if h.server.Assistant() == nil {
		RespondServiceUnavailable(c, "chat assistant is not configured")
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		RespondBadRequest(c, "content is required")
		return
	}

	userID := currentUserID(c)
	conversation, err := h.server.DB().GetConversation(userID, c.Param("id"))
	if err != nil {
		RespondInternalError(c, "failed to load conversation")
		return
	}
	if conversation == nil {
		RespondNotFound(c, "conversation not found")
		return
	}

	stored, err := h.server.DB().RecentMessages(conversation.ID, assistant.MaxHistoryMessages)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load conversation history")
		RespondInternalError(c, "failed to load conversation history")
		return
	}
	history := toChatMessages(stored)

	userMsg, err := h.server.DB().AppendMessage(conversation.ID, "user", req.Content, nil, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store user message")
		RespondInternalError(c, "failed to store message")
		return
	}

	produced, err := h.server.Assistant().Reply(c.Request.Context(), userID, history, req.Content)
	if err != nil {
		log.Error().Err(err).Msg("Assistant reply failed")
		RespondServiceUnavailable(c, "the assistant is unavailable right now")
		return
	}

	saved := []db.Message{*userMsg}
	for _, m := range produced {
		stored, err := h.storeChatMessage(conversation.ID, m)
		if err != nil {
			log.Error().Err(err).Msg("Failed to store assistant message")
			RespondInternalError(c, "failed to store message")
			return
		}
		saved = append(saved, *stored)
	}

	// First user message names the conversation
	title := conversation.Title
	if title == "" || title == "New conversation" {
		title = truncateTitle(req.Content)
	}
	if err := h.server.DB().TouchConversation(conversation.ID, title); err != nil {
		log.Error().Err(err).Msg("Failed to touch conversation")
	}

	RespondList(c, saved)
}

// toChatMessages converts stored messages into the completion request format.
// The history cap can land between an assistant tool-call message and its
// tool results; a tool message without its caller is rejected by the API, so
// leading orphans are dropped.
func toChatMessages(stored []db.Message) []openai.ChatCompletionMessage {
	for len(stored) > 0 && stored[0].Role == "tool" {
		stored = stored[1:]
	}

	out := make([]openai.ChatCompletionMessage, 0, len(stored))
	for _, m := range stored {
		msg := openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
		if m.ToolCalls != nil {
			var calls []openai.ToolCall
			if err := json.Unmarshal([]byte(*m.ToolCalls), &calls); err == nil {
				msg.ToolCalls = calls
			}
		}
		if m.ToolCallID != nil {
			msg.ToolCallID = *m.ToolCallID
		}
		out = append(out, msg)
	}
	return out
}

// storeChatMessage persists one assistant-produced message
func (h *Handlers) storeChatMessage(conversationID string, m openai.ChatCompletionMessage) (*db.Message, error) {
	var toolCalls *string
	if len(m.ToolCalls) > 0 {
		raw, err := json.Marshal(m.ToolCalls)
		if err != nil {
			return nil, err
		}
		s := string(raw)
		toolCalls = &s
	}
	var toolCallID *string
	if m.ToolCallID != "" {
		toolCallID = &m.ToolCallID
	}
	return h.server.DB().AppendMessage(conversationID, m.Role, m.Content, toolCalls, toolCallID)
}

func truncateTitle(content string) string {
	title := strings.TrimSpace(content)
	if line := strings.IndexByte(title, '\n'); line > 0 {
		title = title[:line]
	}
	// Cut on rune boundaries so multi-byte titles stay valid UTF-8
	if runes := []rune(title); len(runes) > 60 {
		title = string(runes[:57]) + "..."
	}
	return title
}
