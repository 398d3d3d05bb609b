// Package assistant implements the AI chat assistant: an OpenAI-style chat
// completion loop in which the model manipulates the user's tasks through
// function calling.
package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/focusflow-app/focusflow/log"
	openai "github.com/sashabaranov/go-openai"
)

var logger = log.GetLogger("Assistant")

const (
	// MaxToolIterations bounds the dispatch loop; a model that keeps
	// requesting tools past this gets cut off with the last content.
	MaxToolIterations = 8

	// MaxHistoryMessages caps how much stored conversation is replayed
	MaxHistoryMessages = 20
)

const systemPrompt = `You are FocusFlow's productivity assistant. You help the user manage
their personal task board (columns: todo, in-progress, completed) and stay focused.
Use the provided tools to create, update, complete, delete or list the user's tasks
when they ask for changes; answer directly when no change is needed.
Dates are YYYY-MM-DD. Today is %s.
Be concise. Confirm what you changed after using a tool.`

// Client is the chat completion surface the assistant needs.
// *openai.Client satisfies it; tests use a scripted fake.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Assistant runs function-calling conversations against a task store
type Assistant struct {
	client Client
	store  TaskStore
	model  string
}

// New creates an assistant
func New(client Client, store TaskStore, model string) *Assistant {
	return &Assistant{client: client, store: store, model: model}
}

// NewOpenAI creates an assistant backed by the OpenAI API
func NewOpenAI(apiKey, baseURL, model string, store TaskStore) *Assistant {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" && baseURL != "https://api.openai.com/v1" {
		clientConfig.BaseURL = baseURL
	}
	return New(openai.NewClientWithConfig(clientConfig), store, model)
}

// Reply runs the dispatch loop for one user turn. history is the prior
// conversation (already capped and in wire format, without the system
// prompt); userMessage is the new turn. It returns every message produced
// during the loop, in order: the assistant's tool-call messages, the tool
// results, and the final assistant answer.
func (a *Assistant) Reply(ctx context.Context, userID string, history []openai.ChatCompletionMessage, userMessage string) ([]openai.ChatCompletionMessage, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf(systemPrompt, time.Now().Format("2006-01-02")),
	})
	messages = append(messages, history...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	var produced []openai.ChatCompletionMessage

	for i := 0; i < MaxToolIterations; i++ {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    toolDefinitions(),
		})
		if err != nil {
			return nil, fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("chat completion returned no choices")
		}

		msg := resp.Choices[0].Message
		produced = append(produced, msg)
		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 {
			// Model answered; the loop is done
			return produced, nil
		}

		logger.Debug().
			Int("iteration", i).
			Int("toolCalls", len(msg.ToolCalls)).
			Msg("executing assistant tool calls")

		for _, call := range msg.ToolCalls {
			result := a.executeTool(userID, call.Function.Name, call.Function.Arguments)

			toolMsg := openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			}
			produced = append(produced, toolMsg)
			messages = append(messages, toolMsg)
		}
	}

	logger.Warn().
		Str("userId", userID).
		Int("maxIterations", MaxToolIterations).
		Msg("assistant hit tool iteration limit")

	// Ask once more without tools to force a final answer
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	produced = append(produced, resp.Choices[0].Message)
	return produced, nil
}
