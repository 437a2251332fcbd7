package ai

import (
	"context"

	"github.com/poiesic/lectio/core"
)

// Embedder generates vector embeddings from text for vector retrieval.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel produces chat completions.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Complete sends the ordered message sequence to the model and returns
	// its structured completion. The completion carries the model's text
	// and any tool calls it chose to make.
	// Returns an error if the service call fails.
	Complete(ctx context.Context, messages []core.Message, opts CompletionOptions) (*Completion, error)
}

// CompletionOptions controls a single completion call.
type CompletionOptions struct {
	// Model overrides the configured model or deployment name when set.
	Model string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens caps the number of tokens in the response.
	MaxTokens int

	// N is the number of choices to generate. Zero means one.
	N int

	// Tools are the functions the model may call.
	Tools []Tool
}

// Tool describes a function the model may call instead of answering.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON schema object describing the arguments.
	Parameters map[string]any
}

// ToolCall is a structured function invocation chosen by the model.
// Arguments holds the JSON-encoded arguments exactly as emitted.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Choice is one candidate completion.
type Choice struct {
	Content      string
	FinishReason string
	ToolCalls    []ToolCall
}

// Usage reports token accounting for a completion when the service provides it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is the structured result of a chat completion call.
type Completion struct {
	Model   string
	Choices []Choice
	Usage   Usage
}

// FirstContent returns the text of the first choice, or "" when the
// completion has no choices.
func (c *Completion) FirstContent() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Content
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ChatModel returns the chat completion service.
	// The returned ChatModel is safe for concurrent use.
	ChatModel() ChatModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
