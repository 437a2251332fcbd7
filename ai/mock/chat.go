package mock

import (
	"context"
	"sync"

	"github.com/poiesic/lectio/ai"
	"github.com/poiesic/lectio/core"
)

// Call records a single invocation of MockChatModel.Complete.
type Call struct {
	Messages []core.Message
	Options  ai.CompletionOptions
}

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, answers with a fixed text derived from the last user message.
	CompleteFunc func(ctx context.Context, messages []core.Message, opts ai.CompletionOptions) (*ai.Completion, error)

	mu    sync.Mutex
	calls []Call
}

// NewMockChatModel creates a mock chat model with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockChatModel().
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Complete records the call and returns the injected or default completion.
func (m *MockChatModel) Complete(ctx context.Context, messages []core.Message, opts ai.CompletionOptions) (*ai.Completion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{
		Messages: append([]core.Message(nil), messages...),
		Options:  opts,
	})
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages, opts)
	}

	question := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleUser {
			question = messages[i].Content
			break
		}
	}
	return TextCompletion("Mock answer for: " + question), nil
}

// CallCount returns the number of times Complete was called.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded invocations in call order.
func (m *MockChatModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Reset clears recorded calls and custom functions.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.CompleteFunc = nil
}

// TextCompletion builds a single-choice completion carrying plain text.
func TextCompletion(text string) *ai.Completion {
	return &ai.Completion{
		Model:   "mock",
		Choices: []ai.Choice{{Content: text, FinishReason: "stop"}},
	}
}

// ToolCallCompletion builds a single-choice completion carrying one tool call.
func ToolCallCompletion(name, arguments string) *ai.Completion {
	return &ai.Completion{
		Model: "mock",
		Choices: []ai.Choice{{
			FinishReason: "tool_calls",
			ToolCalls: []ai.ToolCall{{
				ID:        "call_mock",
				Name:      name,
				Arguments: arguments,
			}},
		}},
	}
}
